package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cleanhive/internal/models"
)

func (db *DB) InsertAuditEntry(ctx context.Context, e *models.AuditEntry) error {
	now := time.Now()
	query := `INSERT INTO audit_log (actor_id, action, entity, entity_id, details, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, e.ActorID, e.Action, e.Entity, e.EntityID, e.Details, now)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

func (db *DB) ListAuditEntries(ctx context.Context, entity string, entityID int64, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, actor_id, action, entity, entity_id, details, created_at FROM audit_log WHERE 1=1`
	var args []any
	if entity != "" {
		query += ` AND entity = ?`
		args = append(args, entity)
	}
	if entityID != 0 {
		query += ` AND entity_id = ?`
		args = append(args, entityID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var (
			e       models.AuditEntry
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Details = details.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (db *DB) InsertSecurityEvent(ctx context.Context, e *models.SecurityEvent) error {
	now := time.Now()
	query := `INSERT INTO security_events (kind, actor_id, remote_ip, details, created_at)
        VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, e.Kind, nullInt64(e.ActorID), e.RemoteIP, e.Details, now)
	if err != nil {
		return fmt.Errorf("failed to insert security event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}
