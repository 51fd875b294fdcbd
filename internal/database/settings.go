package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cleanhive/internal/models"
)

func (db *DB) GetSetting(ctx context.Context, key string) (*models.SystemSetting, error) {
	var (
		s     models.SystemSetting
		value string
	)
	err := db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM system_settings WHERE key = ?`, key).
		Scan(&s.Key, &value, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	s.Value = json.RawMessage(value)
	return &s, nil
}

func (db *DB) SetSetting(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("setting %s: value is not valid JSON", key)
	}
	query := `INSERT INTO system_settings (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query, key, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

func (db *DB) ListSettings(ctx context.Context) ([]*models.SystemSetting, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value, updated_at FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []*models.SystemSetting
	for rows.Next() {
		var (
			s     models.SystemSetting
			value string
		)
		if err := rows.Scan(&s.Key, &value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		s.Value = json.RawMessage(value)
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

// GetBookingRules reads booking_rules, falling back to defaults when unset
// or malformed.
func (db *DB) GetBookingRules(ctx context.Context) (*models.BookingRules, error) {
	setting, err := db.GetSetting(ctx, "booking_rules")
	if errors.Is(err, ErrNotFound) {
		rules := models.DefaultBookingRules()
		return &rules, nil
	}
	if err != nil {
		return nil, err
	}

	rules := models.DefaultBookingRules()
	if err := json.Unmarshal(setting.Value, &rules); err != nil {
		db.logger.Warn().Err(err).Msg("malformed booking_rules setting, using defaults")
		rules = models.DefaultBookingRules()
		return &rules, nil
	}
	if rules.SlotCapacity <= 0 {
		rules.SlotCapacity = models.DefaultSlotCapacity
	}
	if len(rules.TimeSlots) == 0 {
		rules.TimeSlots = models.DefaultBookingRules().TimeSlots
	}
	return &rules, nil
}
