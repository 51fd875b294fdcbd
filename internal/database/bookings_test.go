package database

import (
	"context"
	"testing"
	"time"

	"cleanhive/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCustomer(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Test Customer", Role: models.RoleCustomer, Status: models.UserActive}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func newTestBooking(customerID int64, date time.Time, slot string) *models.Booking {
	return &models.Booking{
		CustomerID:    customerID,
		ServiceType:   "standard",
		ScheduledDate: date,
		TimeSlot:      slot,
		Address:       "12 Main St",
		ZipCode:       "73301",
		Bedrooms:      2,
		Bathrooms:     1,
		SquareFootage: 900,
		Extras:        []string{"windows", "oven"},
		Amount:        decimal.NewFromInt(140),
	}
}

func TestCreateBookingForcesPending(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	customer := createTestCustomer(t, db, "c1@example.com")

	booking := newTestBooking(customer.ID, time.Now().AddDate(0, 0, 3), "10:00")
	booking.Status = models.StatusCompleted // caller tries to smuggle a status
	require.NoError(t, db.CreateBooking(ctx, booking, 4))

	assert.Equal(t, models.StatusPending, booking.Status)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, []string{"windows", "oven"}, got.Extras)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(140)))
}

func TestCreateBookingIdempotencyReplay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	customer := createTestCustomer(t, db, "c2@example.com")

	date := time.Now().AddDate(0, 0, 5)
	first := newTestBooking(customer.ID, date, "12:00")
	first.IdempotencyKey = "req-abc"
	require.NoError(t, db.CreateBooking(ctx, first, 4))

	// Double-submit with the same key returns the stored row
	replay := newTestBooking(customer.ID, date, "12:00")
	replay.IdempotencyKey = "req-abc"
	require.NoError(t, db.CreateBooking(ctx, replay, 4))
	assert.Equal(t, first.ID, replay.ID)

	count, err := db.GetBookedCount(ctx, date, "12:00")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateBookingCapacity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	customer := createTestCustomer(t, db, "c3@example.com")

	date := time.Now().AddDate(0, 0, 2)
	for i := 0; i < 2; i++ {
		b := newTestBooking(customer.ID, date, "08:00")
		require.NoError(t, db.CreateBooking(ctx, b, 2))
	}

	full := newTestBooking(customer.ID, date, "08:00")
	err := db.CreateBooking(ctx, full, 2)
	assert.ErrorIs(t, err, ErrNotAvailable)

	// Cancelled bookings free up capacity
	bookings, err := db.GetUserBookings(ctx, customer.ID)
	require.NoError(t, err)
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, bookings[0].ID, bookings[0].Version, models.StatusCancelled))

	retry := newTestBooking(customer.ID, date, "08:00")
	assert.NoError(t, db.CreateBooking(ctx, retry, 2))
}

func TestCancelChangesOnlyStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	customer := createTestCustomer(t, db, "c4@example.com")

	booking := newTestBooking(customer.ID, time.Now().AddDate(0, 0, 7), "14:00")
	require.NoError(t, db.CreateBooking(ctx, booking, 4))

	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, models.StatusCancelled))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.EqualValues(t, 2, got.Version)
	// everything else untouched
	assert.Equal(t, booking.Address, got.Address)
	assert.Equal(t, booking.TimeSlot, got.TimeSlot)
	assert.True(t, got.Amount.Equal(booking.Amount))
	assert.Equal(t, booking.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestUpdateBookingStatusVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	customer := createTestCustomer(t, db, "c5@example.com")

	booking := newTestBooking(customer.ID, time.Now().AddDate(0, 0, 1), "16:00")
	require.NoError(t, db.CreateBooking(ctx, booking, 4))

	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, booking.ID, 1, models.StatusConfirmed))
	err := db.UpdateBookingStatusWithVersion(ctx, booking.ID, 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestGetUpcomingBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestCustomer(t, db, "owner@example.com")
	other := createTestCustomer(t, db, "other@example.com")

	today := time.Now()
	// owner: one past, two future out of order
	past := newTestBooking(owner.ID, today.AddDate(0, 0, -3), "10:00")
	require.NoError(t, db.CreateBooking(ctx, past, 4))
	far := newTestBooking(owner.ID, today.AddDate(0, 0, 10), "10:00")
	require.NoError(t, db.CreateBooking(ctx, far, 4))
	near := newTestBooking(owner.ID, today.AddDate(0, 0, 2), "10:00")
	require.NoError(t, db.CreateBooking(ctx, near, 4))
	// someone else's future booking must not leak
	foreign := newTestBooking(other.ID, today.AddDate(0, 0, 4), "10:00")
	require.NoError(t, db.CreateBooking(ctx, foreign, 4))

	upcoming, err := db.GetUpcomingBookings(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, near.ID, upcoming[0].ID)
	assert.Equal(t, far.ID, upcoming[1].ID)
	for _, b := range upcoming {
		assert.Equal(t, owner.ID, b.CustomerID)
		assert.False(t, b.ScheduledDate.Before(today.Truncate(24*time.Hour)))
	}
}

func TestGetAvailabilityForPeriod(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	customer := createTestCustomer(t, db, "avail@example.com")

	start := time.Now().AddDate(0, 0, 1)
	slots := []string{"08:00", "10:00"}

	// Fill 08:00 on day one completely
	for i := 0; i < 2; i++ {
		b := newTestBooking(customer.ID, start, "08:00")
		require.NoError(t, db.CreateBooking(ctx, b, 2))
	}
	one := newTestBooking(customer.ID, start, "10:00")
	require.NoError(t, db.CreateBooking(ctx, one, 2))

	avail, err := db.GetAvailabilityForPeriod(ctx, start, 2, slots, 2)
	require.NoError(t, err)
	require.Len(t, avail, 4) // 2 days x 2 slots

	assert.EqualValues(t, 2, avail[0].Booked)
	assert.EqualValues(t, 0, avail[0].Available)
	assert.EqualValues(t, 1, avail[1].Booked)
	assert.EqualValues(t, 1, avail[1].Available)
	assert.EqualValues(t, 0, avail[2].Booked)
	assert.EqualValues(t, 2, avail[2].Available)
}

func TestAssignProvider(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	customer := createTestCustomer(t, db, "cust@example.com")
	provider := &models.User{Email: "pro@example.com", FullName: "Pro", Role: models.RoleProvider, Status: models.UserActive}
	require.NoError(t, db.CreateUser(ctx, provider))

	booking := newTestBooking(customer.ID, time.Now().AddDate(0, 0, 3), "10:00")
	require.NoError(t, db.CreateBooking(ctx, booking, 4))

	require.NoError(t, db.AssignProviderWithVersion(ctx, booking.ID, booking.Version, provider.ID))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProviderID)
	assert.Equal(t, provider.ID, *got.ProviderID)

	mine, err := db.GetProviderBookings(ctx, provider.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
