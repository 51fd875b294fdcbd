package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cleanhive/internal/models"

	"github.com/shopspring/decimal"
)

const bookingColumns = `id, customer_id, provider_id, service_type, scheduled_date, time_slot,
        address, zip_code, bedrooms, bathrooms, square_footage, extras, instructions,
        amount, promo_code, status, idempotency_key, created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b          models.Booking
		providerID sql.NullInt64
		dateStr    string
		extras     sql.NullString
		instr      sql.NullString
		amountStr  string
		promoCode  sql.NullString
		idemKey    sql.NullString
	)

	err := row.Scan(
		&b.ID, &b.CustomerID, &providerID, &b.ServiceType, &dateStr, &b.TimeSlot,
		&b.Address, &b.ZipCode, &b.Bedrooms, &b.Bathrooms, &b.SquareFootage, &extras, &instr,
		&amountStr, &promoCode, &b.Status, &idemKey, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}

	b.ScheduledDate, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	b.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking amount %s: %w", amountStr, err)
	}
	if providerID.Valid {
		b.ProviderID = &providerID.Int64
	}
	if extras.Valid && extras.String != "" {
		if err := json.Unmarshal([]byte(extras.String), &b.Extras); err != nil {
			return nil, fmt.Errorf("failed to parse booking extras: %w", err)
		}
	}
	b.Instructions = instr.String
	b.PromoCode = promoCode.String
	b.IdempotencyKey = idemKey.String

	return &b, nil
}

// CreateBooking inserts a booking inside a transaction: the idempotency key is
// checked first, then slot capacity. On a key replay the stored booking is
// returned and no new row is created.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking, slotCapacity int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if booking.IdempotencyKey != "" {
		row := tx.QueryRowContext(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key = ?`, booking.IdempotencyKey)
		existing, err := scanBooking(row)
		if err == nil {
			*booking = *existing
			return tx.Commit()
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	var bookedCount int
	queryCount := `SELECT COUNT(*) FROM bookings
        WHERE scheduled_date = ? AND time_slot = ? AND status NOT IN (?, ?)`
	err = tx.QueryRowContext(ctx, queryCount,
		booking.ScheduledDate.Format("2006-01-02"), booking.TimeSlot,
		models.StatusCancelled, models.StatusCompleted).Scan(&bookedCount)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if bookedCount >= slotCapacity {
		return ErrNotAvailable
	}

	extras, err := json.Marshal(booking.Extras)
	if err != nil {
		return fmt.Errorf("failed to encode extras: %w", err)
	}

	now := time.Now()
	queryInsert := `INSERT INTO bookings (
            customer_id, provider_id, service_type, scheduled_date, time_slot,
            address, zip_code, bedrooms, bathrooms, square_footage, extras, instructions,
            amount, promo_code, status, idempotency_key, created_at, updated_at, version
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.CustomerID,
		booking.ProviderID,
		booking.ServiceType,
		booking.ScheduledDate.Format("2006-01-02"),
		booking.TimeSlot,
		booking.Address,
		booking.ZipCode,
		booking.Bedrooms,
		booking.Bathrooms,
		booking.SquareFootage,
		string(extras),
		booking.Instructions,
		booking.Amount.String(),
		booking.PromoCode,
		models.StatusPending,
		nullString(booking.IdempotencyKey),
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.Status = models.StatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) AssignProviderWithVersion(ctx context.Context, id, fromVersion, providerID int64) error {
	query := `UPDATE bookings SET provider_id = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, providerID, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to assign provider: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) GetUserBookings(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE customer_id = ? ORDER BY scheduled_date DESC, id DESC`,
		customerID)
}

// GetUpcomingBookings returns the customer's bookings from today onward,
// ascending by date.
func (db *DB) GetUpcomingBookings(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	today := time.Now().Format("2006-01-02")
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
         WHERE customer_id = ? AND scheduled_date >= ? ORDER BY scheduled_date ASC, time_slot ASC`,
		customerID, today)
}

func (db *DB) GetProviderBookings(ctx context.Context, providerID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE provider_id = ? ORDER BY scheduled_date ASC, time_slot ASC`,
		providerID)
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
         WHERE scheduled_date >= ? AND scheduled_date <= ? ORDER BY scheduled_date ASC, time_slot ASC`,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
}

func (db *DB) GetBookedCount(ctx context.Context, date time.Time, timeSlot string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings
        WHERE scheduled_date = ? AND time_slot = ? AND status NOT IN (?, ?)`
	var count int
	err := db.QueryRowContext(ctx, query, date.Format("2006-01-02"), timeSlot,
		models.StatusCancelled, models.StatusCompleted).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get booked count: %w", err)
	}
	return count, nil
}

// GetAvailabilityForPeriod computes remaining capacity for every slot of every
// day in [startDate, startDate+days).
func (db *DB) GetAvailabilityForPeriod(ctx context.Context, startDate time.Time, days int, slots []string, capacity int) ([]*models.Availability, error) {
	query := `SELECT scheduled_date, time_slot, COUNT(*) FROM bookings
        WHERE scheduled_date >= ? AND scheduled_date < ? AND status NOT IN (?, ?)
        GROUP BY scheduled_date, time_slot`
	endDate := startDate.AddDate(0, 0, days)
	rows, err := db.QueryContext(ctx, query,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"),
		models.StatusCancelled, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability batch: %w", err)
	}
	defer rows.Close()

	booked := make(map[string]int64)
	for rows.Next() {
		var dateStr, slot string
		var count int64
		if err := rows.Scan(&dateStr, &slot, &count); err != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", err)
		}
		booked[dateStr+"|"+slot] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var result []*models.Availability
	for d := 0; d < days; d++ {
		date := startDate.AddDate(0, 0, d)
		dateStr := date.Format("2006-01-02")
		for _, slot := range slots {
			n := booked[dateStr+"|"+slot]
			avail := int64(capacity) - n
			if avail < 0 {
				avail = 0
			}
			result = append(result, &models.Availability{
				Date:      date,
				TimeSlot:  slot,
				Booked:    n,
				Available: avail,
			})
		}
	}
	return result, nil
}

// GetDailyBookings groups bookings by date string for schedule rendering.
func (db *DB) GetDailyBookings(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Booking, error) {
	bookings, err := db.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Booking)
	for _, b := range bookings {
		key := b.ScheduledDate.Format("2006-01-02")
		daily[key] = append(daily[key], b)
	}
	return daily, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
