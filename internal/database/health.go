package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cleanhive/internal/models"
)

func (db *DB) InsertHealthCheck(ctx context.Context, c *models.HealthCheck) error {
	now := time.Now()
	query := `INSERT INTO api_health_checks (dependency, status, response_time_ms, error, checked_at)
        VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, c.Dependency, c.Status, c.ResponseTime, c.Error, now)
	if err != nil {
		return fmt.Errorf("failed to insert health check: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	c.CheckedAt = now
	return nil
}

// LatestHealthChecks returns the most recent check per dependency.
func (db *DB) LatestHealthChecks(ctx context.Context) ([]*models.HealthCheck, error) {
	query := `SELECT h.id, h.dependency, h.status, h.response_time_ms, h.error, h.checked_at
        FROM api_health_checks h
        INNER JOIN (
            SELECT dependency, MAX(checked_at) AS latest FROM api_health_checks GROUP BY dependency
        ) m ON h.dependency = m.dependency AND h.checked_at = m.latest
        ORDER BY h.dependency`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest health checks: %w", err)
	}
	defer rows.Close()

	var checks []*models.HealthCheck
	for rows.Next() {
		var (
			c      models.HealthCheck
			errMsg sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Dependency, &c.Status, &c.ResponseTime, &errMsg, &c.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan health check: %w", err)
		}
		c.Error = errMsg.String
		checks = append(checks, &c)
	}
	return checks, rows.Err()
}

// PruneHealthChecks deletes check rows older than the retention window.
func (db *DB) PruneHealthChecks(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := db.ExecContext(ctx, `DELETE FROM api_health_checks WHERE checked_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune health checks: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
