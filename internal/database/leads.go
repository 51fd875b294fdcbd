package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cleanhive/internal/models"
)

const leadColumns = `id, name, email, phone, kind, stage, notes, created_at, updated_at, version`

func scanLead(row rowScanner) (*models.Lead, error) {
	var (
		l     models.Lead
		phone sql.NullString
		notes sql.NullString
	)
	err := row.Scan(&l.ID, &l.Name, &l.Email, &phone, &l.Kind, &l.Stage, &notes,
		&l.CreatedAt, &l.UpdatedAt, &l.Version)
	if err != nil {
		return nil, err
	}
	l.Phone = phone.String
	l.Notes = notes.String
	return &l, nil
}

func (db *DB) CreateLead(ctx context.Context, lead *models.Lead) error {
	if lead.Stage == "" {
		lead.Stage = models.StageNew
	}
	now := time.Now()
	query := `INSERT INTO leads (name, email, phone, kind, stage, notes, created_at, updated_at, version)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		lead.Name, lead.Email, lead.Phone, lead.Kind, lead.Stage, lead.Notes, now, now, 1)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	lead.ID = id
	lead.CreatedAt = now
	lead.UpdatedAt = now
	lead.Version = 1
	return nil
}

func (db *DB) GetLead(ctx context.Context, id int64) (*models.Lead, error) {
	row := db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// ListLeads returns leads filtered by stage; empty stage matches everything.
func (db *DB) ListLeads(ctx context.Context, stage string) ([]*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []any
	if stage != "" {
		query += ` WHERE stage = ?`
		args = append(args, stage)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (db *DB) UpdateLeadStageWithVersion(ctx context.Context, id, fromVersion int64, stage string) error {
	query := `UPDATE leads SET stage = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, stage, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update lead stage: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) UpdateLeadNotes(ctx context.Context, id int64, notes string) error {
	query := `UPDATE leads SET notes = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, notes, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update lead notes: %w", err)
	}
	return nil
}

// CountLeadsByStage returns the pipeline board counters.
func (db *DB) CountLeadsByStage(ctx context.Context) (map[string]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT stage, COUNT(*) FROM leads GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by stage: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var stage string
		var n int64
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, fmt.Errorf("failed to scan lead counter: %w", err)
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}
