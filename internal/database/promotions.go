package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cleanhive/internal/models"

	"github.com/shopspring/decimal"
)

const promotionColumns = `id, code, kind, value, valid_from, valid_until, max_uses, used_count,
        min_amount, is_active, created_at, updated_at`

func scanPromotion(row rowScanner) (*models.Promotion, error) {
	var (
		p            models.Promotion
		valueStr     string
		minAmountStr string
	)
	err := row.Scan(&p.ID, &p.Code, &p.Kind, &valueStr, &p.ValidFrom, &p.ValidUntil,
		&p.MaxUses, &p.UsedCount, &minAmountStr, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Value, err = decimal.NewFromString(valueStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse promotion value %s: %w", valueStr, err)
	}
	p.MinAmount, err = decimal.NewFromString(minAmountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse promotion min amount %s: %w", minAmountStr, err)
	}
	return &p, nil
}

func (db *DB) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	now := time.Now()
	query := `INSERT INTO promotions (code, kind, value, valid_from, valid_until, max_uses,
            used_count, min_amount, is_active, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		strings.ToUpper(p.Code), p.Kind, p.Value.String(), p.ValidFrom, p.ValidUntil,
		p.MaxUses, p.UsedCount, p.MinAmount.String(), p.IsActive, now, now)
	if err != nil {
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (db *DB) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE code = ?`, strings.ToUpper(code))
	p, err := scanPromotion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promotion: %w", err)
	}
	return p, nil
}

func (db *DB) ListPromotions(ctx context.Context, activeOnly bool) ([]*models.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	defer rows.Close()

	var promos []*models.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// RedeemPromotion increments the usage counter with a guard so used_count can
// never pass max_uses, no matter how many redemptions race.
func (db *DB) RedeemPromotion(ctx context.Context, code string) error {
	query := `UPDATE promotions SET used_count = used_count + 1, updated_at = ?
        WHERE code = ? AND is_active = 1 AND (max_uses = 0 OR used_count < max_uses)`
	result, err := db.ExecContext(ctx, query, time.Now(), strings.ToUpper(code))
	if err != nil {
		return fmt.Errorf("failed to redeem promotion: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPromoExhausted
	}
	return nil
}

func (db *DB) SetPromotionActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE promotions SET is_active = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update promotion: %w", err)
	}
	return nil
}
