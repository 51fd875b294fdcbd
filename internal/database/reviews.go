package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cleanhive/internal/models"
)

func (db *DB) CreateReview(ctx context.Context, r *models.Review) error {
	now := time.Now()
	query := `INSERT INTO reviews (booking_id, customer_id, provider_id, rating, comment, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		r.BookingID, r.CustomerID, nullInt64(r.ProviderID), r.Rating, r.Comment, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: reviews.booking_id") {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	return nil
}

// AverageRating returns 0 when no reviews exist.
func (db *DB) AverageRating(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := db.QueryRowContext(ctx, `SELECT AVG(rating) FROM reviews`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to get average rating: %w", err)
	}
	return avg.Float64, nil
}

func (db *DB) ListProviderReviews(ctx context.Context, providerID int64) ([]*models.Review, error) {
	query := `SELECT id, booking_id, customer_id, provider_id, rating, comment, created_at
        FROM reviews WHERE provider_id = ? ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var (
			r          models.Review
			providerID sql.NullInt64
			comment    sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.BookingID, &r.CustomerID, &providerID, &r.Rating, &comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		r.ProviderID = providerID.Int64
		r.Comment = comment.String
		reviews = append(reviews, &r)
	}
	return reviews, rows.Err()
}

func nullInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
