package service

import (
	"context"
	"io"
	"testing"
	"time"

	"cleanhive/internal/database"
	"cleanhive/internal/domain"
	"cleanhive/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking, cap int) error {
	return m.Called(ctx, b, cap).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) UpdateBookingStatusWithVersion(ctx context.Context, id, v int64, s string) error {
	return m.Called(ctx, id, v, s).Error(0)
}
func (m *mockRepo) AssignProviderWithVersion(ctx context.Context, id, v, pid int64) error {
	return m.Called(ctx, id, v, pid).Error(0)
}
func (m *mockRepo) GetUserBookings(ctx context.Context, id int64) ([]*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetUpcomingBookings(ctx context.Context, id int64) ([]*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetProviderBookings(ctx context.Context, id int64) ([]*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingsByDateRange(ctx context.Context, s, e time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookedCount(ctx context.Context, d time.Time, slot string) (int, error) {
	args := m.Called(ctx, d, slot)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) GetAvailabilityForPeriod(ctx context.Context, s time.Time, d int, slots []string, cap int) ([]*models.Availability, error) {
	args := m.Called(ctx, s, d, slots, cap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Availability), args.Error(1)
}
func (m *mockRepo) GetDailyBookings(ctx context.Context, s, e time.Time) (map[string][]*models.Booking, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]*models.Booking), args.Error(1)
}
func (m *mockRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) EnsureCustomer(ctx context.Context, email, name, phone string) (*models.User, error) {
	args := m.Called(ctx, email, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) ListUsers(ctx context.Context, role, status string) ([]*models.User, error) {
	args := m.Called(ctx, role, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockRepo) UpdateUserStatusWithVersion(ctx context.Context, id, v int64, s string) error {
	return m.Called(ctx, id, v, s).Error(0)
}
func (m *mockRepo) UpdateUserActivity(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreateLead(ctx context.Context, l *models.Lead) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockRepo) GetLead(ctx context.Context, id int64) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}
func (m *mockRepo) ListLeads(ctx context.Context, stage string) ([]*models.Lead, error) {
	args := m.Called(ctx, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lead), args.Error(1)
}
func (m *mockRepo) UpdateLeadStageWithVersion(ctx context.Context, id, v int64, stage string) error {
	return m.Called(ctx, id, v, stage).Error(0)
}
func (m *mockRepo) UpdateLeadNotes(ctx context.Context, id int64, notes string) error {
	return m.Called(ctx, id, notes).Error(0)
}
func (m *mockRepo) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}
func (m *mockRepo) ListPromotions(ctx context.Context, activeOnly bool) ([]*models.Promotion, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Promotion), args.Error(1)
}
func (m *mockRepo) RedeemPromotion(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}
func (m *mockRepo) SetPromotionActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
func (m *mockRepo) CreateReview(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) ListProviderReviews(ctx context.Context, providerID int64) ([]*models.Review, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}
func (m *mockRepo) CreateServiceArea(ctx context.Context, a *models.ServiceArea) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockRepo) ListServiceAreas(ctx context.Context, activeOnly bool) ([]*models.ServiceArea, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceArea), args.Error(1)
}
func (m *mockRepo) GetSetting(ctx context.Context, key string) (*models.SystemSetting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SystemSetting), args.Error(1)
}
func (m *mockRepo) SetSetting(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}
func (m *mockRepo) GetBookingRules(ctx context.Context) (*models.BookingRules, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingRules), args.Error(1)
}
func (m *mockRepo) CreateOutboxTask(ctx context.Context, t *models.OutboxTask) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockRepo) InsertAuditEntry(ctx context.Context, e *models.AuditEntry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockRepo) InsertSecurityEvent(ctx context.Context, e *models.SecurityEvent) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockRepo) GetDashboardStats(ctx context.Context) (*database.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.DashboardStats), args.Error(1)
}
func (m *mockRepo) MonthlyRevenue(ctx context.Context, months int) ([]database.MonthlyRevenuePoint, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.MonthlyRevenuePoint), args.Error(1)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockOutbox struct {
	mock.Mock
}

func (m *mockOutbox) EnqueueTask(ctx context.Context, taskType string, entityID int64, payload interface{}) error {
	return m.Called(ctx, taskType, entityID, payload).Error(0)
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func defaultRules() *models.BookingRules {
	r := models.DefaultBookingRules()
	return &r
}

func newBookingService(repo *mockRepo, bus *mockBus, outbox *mockOutbox) *BookingService {
	promos := NewPromotionService(repo, testLogger())
	var busIface domain.EventPublisher
	if bus != nil {
		busIface = bus
	}
	var outboxIface domain.OutboxEnqueuer
	if outbox != nil {
		outboxIface = outbox
	}
	return NewBookingService(repo, busIface, outboxIface, promos, 1, testLogger())
}

func validBooking() *models.Booking {
	return &models.Booking{
		CustomerID:    1,
		ServiceType:   "standard",
		ScheduledDate: time.Now().AddDate(0, 0, 3),
		TimeSlot:      "10:00",
		Address:       "500 Congress Ave",
		ZipCode:       "78701",
		Bedrooms:      2,
		Bathrooms:     1,
	}
}

func TestQuotePricing(t *testing.T) {
	svc := newBookingService(new(mockRepo), nil, nil)

	booking := &models.Booking{
		ServiceType:   "standard",
		Bedrooms:      2,
		Bathrooms:     1,
		Extras:        []string{"windows", "oven"},
		SquareFootage: 750,
	}

	// 100 + 2*25 + 1*20 + 2*30 + 2*5
	quote, err := svc.Quote(context.Background(), booking, "")
	require.NoError(t, err)
	assert.Equal(t, "240.00", quote.Amount)
	assert.Equal(t, "240.00", quote.Total)
	assert.Empty(t, quote.Discount)
}

func TestQuoteUnknownServiceType(t *testing.T) {
	svc := newBookingService(new(mockRepo), nil, nil)

	_, err := svc.Quote(context.Background(), &models.Booking{ServiceType: "laundry"}, "")
	assert.Error(t, err)
}

func TestQuoteAppliesPromo(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetPromotionByCode", mock.Anything, "WELCOME10").Return(&models.Promotion{
		Code:       "WELCOME10",
		Kind:       models.PromoPercentage,
		Value:      decimal.NewFromInt(10),
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		IsActive:   true,
	}, nil)

	svc := newBookingService(repo, nil, nil)
	booking := &models.Booking{ServiceType: "deep", Bedrooms: 1} // 180 + 25

	quote, err := svc.Quote(context.Background(), booking, "WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, "205.00", quote.Amount)
	assert.Equal(t, "20.50", quote.Discount)
	assert.Equal(t, "184.50", quote.Total)
	assert.Equal(t, "WELCOME10", quote.PromoCode)
}

func TestCreateBookingRejectsPastDate(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBookingRules", mock.Anything).Return(defaultRules(), nil)

	svc := newBookingService(repo, nil, nil)
	booking := validBooking()
	booking.ScheduledDate = time.Now()

	err := svc.CreateBooking(context.Background(), booking)
	assert.ErrorIs(t, err, database.ErrPastDate)
	repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingRejectsFarDate(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBookingRules", mock.Anything).Return(defaultRules(), nil)

	svc := newBookingService(repo, nil, nil)
	booking := validBooking()
	booking.ScheduledDate = time.Now().AddDate(0, 0, 200)

	err := svc.CreateBooking(context.Background(), booking)
	assert.ErrorIs(t, err, database.ErrDateTooFar)
}

func TestCreateBookingRejectsUnknownSlot(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBookingRules", mock.Anything).Return(defaultRules(), nil)

	svc := newBookingService(repo, nil, nil)
	booking := validBooking()
	booking.TimeSlot = "23:00"

	err := svc.CreateBooking(context.Background(), booking)
	assert.ErrorIs(t, err, database.ErrNotAvailable)
}

func TestCreateBookingRejectsUncoveredZip(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBookingRules", mock.Anything).Return(defaultRules(), nil)
	repo.On("ListServiceAreas", mock.Anything, true).Return([]*models.ServiceArea{
		{Name: "Downtown", Kind: models.AreaPolygon, ZipCodes: []string{"787*"}, IsActive: true},
	}, nil)

	svc := newBookingService(repo, nil, nil)
	booking := validBooking()
	booking.ZipCode = "10001"

	err := svc.CreateBooking(context.Background(), booking)
	assert.ErrorIs(t, err, database.ErrOutsideServiceArea)
}

func TestCreateBookingPricesAndPersists(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)
	outbox := new(mockOutbox)

	repo.On("GetBookingRules", mock.Anything).Return(defaultRules(), nil)
	repo.On("ListServiceAreas", mock.Anything, true).Return([]*models.ServiceArea{}, nil)
	repo.On("CreateBooking", mock.Anything, mock.Anything, models.DefaultSlotCapacity).
		Run(func(args mock.Arguments) {
			b := args.Get(1).(*models.Booking)
			b.ID = 42
			b.Status = models.StatusPending
		}).Return(nil)
	repo.On("GetUserByID", mock.Anything, int64(1)).Return(&models.User{
		ID: 1, Email: "jane@example.com", FullName: "Jane", Role: models.RoleCustomer,
	}, nil)
	bus.On("PublishJSON", "booking_created", mock.Anything).Return(nil)
	outbox.On("EnqueueTask", mock.Anything, mock.Anything, int64(42), mock.Anything).Return(nil)

	svc := newBookingService(repo, bus, outbox)
	booking := validBooking()

	require.NoError(t, svc.CreateBooking(context.Background(), booking))

	// 100 + 2*25 + 1*20
	assert.Equal(t, "170.00", booking.Amount.StringFixed(2))
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
	// analytics, sheets append, confirmation email
	outbox.AssertNumberOfCalls(t, "EnqueueTask", 3)
}

func TestCreateBookingRedeemsPromo(t *testing.T) {
	repo := new(mockRepo)

	repo.On("GetBookingRules", mock.Anything).Return(defaultRules(), nil)
	repo.On("ListServiceAreas", mock.Anything, true).Return([]*models.ServiceArea{}, nil)
	repo.On("GetPromotionByCode", mock.Anything, "FLAT20").Return(&models.Promotion{
		Code:       "FLAT20",
		Kind:       models.PromoFixed,
		Value:      decimal.NewFromInt(20),
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		IsActive:   true,
	}, nil)
	repo.On("CreateBooking", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("RedeemPromotion", mock.Anything, "FLAT20").Return(nil)
	repo.On("GetUserByID", mock.Anything, mock.Anything).Return(&models.User{Email: "x@example.com"}, nil)

	svc := newBookingService(repo, nil, nil)
	booking := validBooking()
	booking.PromoCode = "FLAT20"

	require.NoError(t, svc.CreateBooking(context.Background(), booking))
	assert.Equal(t, "150.00", booking.Amount.StringFixed(2))
	repo.AssertCalled(t, "RedeemPromotion", mock.Anything, "FLAT20")
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBooking", mock.Anything, int64(7)).Return(&models.Booking{
		ID: 7, Status: models.StatusCompleted, Version: 3,
	}, nil)

	svc := newBookingService(repo, nil, nil)

	err := svc.Transition(context.Background(), 7, 3, models.StatusConfirmed, 1)
	var invalid *models.ErrInvalidTransition
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusCompleted, invalid.From)
	repo.AssertNotCalled(t, "UpdateBookingStatusWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionPropagatesVersionConflict(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBooking", mock.Anything, int64(7)).Return(&models.Booking{
		ID: 7, CustomerID: 1, Status: models.StatusPending, Version: 2,
	}, nil)
	repo.On("UpdateBookingStatusWithVersion", mock.Anything, int64(7), int64(1), models.StatusConfirmed).
		Return(database.ErrConcurrentModification)

	svc := newBookingService(repo, nil, nil)

	err := svc.Transition(context.Background(), 7, 1, models.StatusConfirmed, 1)
	assert.ErrorIs(t, err, database.ErrConcurrentModification)
}

func TestTransitionPublishesAndQueuesSideEffects(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)
	outbox := new(mockOutbox)

	pending := &models.Booking{ID: 7, CustomerID: 1, Status: models.StatusPending, Version: 1}
	confirmed := &models.Booking{ID: 7, CustomerID: 1, Status: models.StatusConfirmed, Version: 2}

	repo.On("GetBooking", mock.Anything, int64(7)).Return(pending, nil).Once()
	repo.On("UpdateBookingStatusWithVersion", mock.Anything, int64(7), int64(1), models.StatusConfirmed).Return(nil)
	repo.On("GetBooking", mock.Anything, int64(7)).Return(confirmed, nil)
	repo.On("GetUserByID", mock.Anything, int64(1)).Return(&models.User{
		ID: 1, Email: "jane@example.com", FullName: "Jane",
	}, nil)
	bus.On("PublishJSON", "booking_confirmed", mock.Anything).Return(nil)
	outbox.On("EnqueueTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newBookingService(repo, bus, outbox)

	require.NoError(t, svc.Transition(context.Background(), 7, 1, models.StatusConfirmed, 99))
	bus.AssertExpectations(t)
	// analytics, audit, status email
	outbox.AssertNumberOfCalls(t, "EnqueueTask", 3)
}

func TestAssignProviderRejectsNonProvider(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetUserByID", mock.Anything, int64(5)).Return(&models.User{
		ID: 5, Role: models.RoleCustomer, Status: models.UserActive,
	}, nil)

	svc := newBookingService(repo, nil, nil)

	err := svc.AssignProvider(context.Background(), 7, 1, 5, 99)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "AssignProviderWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignProviderRejectsInactiveProvider(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetUserByID", mock.Anything, int64(5)).Return(&models.User{
		ID: 5, Role: models.RoleProvider, Status: models.UserSuspended,
	}, nil)

	svc := newBookingService(repo, nil, nil)

	err := svc.AssignProvider(context.Background(), 7, 1, 5, 99)
	assert.Error(t, err)
}

func TestAssignProviderOK(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetUserByID", mock.Anything, int64(5)).Return(&models.User{
		ID: 5, Role: models.RoleProvider, Status: models.UserActive,
	}, nil)
	repo.On("AssignProviderWithVersion", mock.Anything, int64(7), int64(1), int64(5)).Return(nil)
	repo.On("GetBooking", mock.Anything, int64(7)).Return(&models.Booking{
		ID: 7, CustomerID: 1, Status: models.StatusConfirmed,
	}, nil)

	svc := newBookingService(repo, nil, nil)

	require.NoError(t, svc.AssignProvider(context.Background(), 7, 1, 5, 99))
	repo.AssertExpectations(t)
}

func TestLeaveReviewOnCompletedBooking(t *testing.T) {
	providerID := int64(5)
	repo := new(mockRepo)
	repo.On("GetBooking", mock.Anything, int64(7)).Return(&models.Booking{
		ID: 7, CustomerID: 1, ProviderID: &providerID, Status: models.StatusCompleted,
	}, nil)
	repo.On("CreateReview", mock.Anything, mock.AnythingOfType("*models.Review")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Review).ID = 11
	}).Return(nil)

	outbox := new(mockOutbox)
	outbox.On("EnqueueTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newBookingService(repo, nil, outbox)

	review, err := svc.LeaveReview(context.Background(), 7, 1, 5, "spotless")
	require.NoError(t, err)
	assert.Equal(t, int64(11), review.ID)
	assert.Equal(t, int64(7), review.BookingID)
	assert.Equal(t, providerID, review.ProviderID)
	assert.Equal(t, 5, review.Rating)

	// audit + analytics
	outbox.AssertNumberOfCalls(t, "EnqueueTask", 2)
	repo.AssertExpectations(t)
}

func TestLeaveReviewRejectsBadRating(t *testing.T) {
	svc := newBookingService(new(mockRepo), nil, nil)

	_, err := svc.LeaveReview(context.Background(), 7, 1, 0, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.LeaveReview(context.Background(), 7, 1, 6, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestLeaveReviewRejectsUnfinishedBooking(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBooking", mock.Anything, int64(7)).Return(&models.Booking{
		ID: 7, CustomerID: 1, Status: models.StatusConfirmed,
	}, nil)

	svc := newBookingService(repo, nil, nil)

	_, err := svc.LeaveReview(context.Background(), 7, 1, 4, "")
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
}

func TestLeaveReviewHidesForeignBooking(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBooking", mock.Anything, int64(7)).Return(&models.Booking{
		ID: 7, CustomerID: 2, Status: models.StatusCompleted,
	}, nil)

	svc := newBookingService(repo, nil, nil)

	_, err := svc.LeaveReview(context.Background(), 7, 1, 4, "")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLeaveReviewDuplicate(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBooking", mock.Anything, int64(7)).Return(&models.Booking{
		ID: 7, CustomerID: 1, Status: models.StatusCompleted,
	}, nil)
	repo.On("CreateReview", mock.Anything, mock.Anything).Return(database.ErrDuplicateReview)

	svc := newBookingService(repo, nil, nil)

	_, err := svc.LeaveReview(context.Background(), 7, 1, 4, "")
	assert.ErrorIs(t, err, database.ErrDuplicateReview)
}
