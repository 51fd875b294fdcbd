package domain

import (
	"context"
	"time"

	"cleanhive/internal/database"
	"cleanhive/internal/models"

	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking, slotCapacity int) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status string) error
	AssignProviderWithVersion(ctx context.Context, id, version, providerID int64) error
	GetUserBookings(ctx context.Context, customerID int64) ([]*models.Booking, error)
	GetUpcomingBookings(ctx context.Context, customerID int64) ([]*models.Booking, error)
	GetProviderBookings(ctx context.Context, providerID int64) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetBookedCount(ctx context.Context, date time.Time, slot string) (int, error)
	GetAvailabilityForPeriod(ctx context.Context, start time.Time, days int, slots []string, capacity int) ([]*models.Availability, error)
	GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error)

	CreateUser(ctx context.Context, user *models.User) error
	EnsureCustomer(ctx context.Context, email, fullName, phone string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, role, status string) ([]*models.User, error)
	UpdateUserStatusWithVersion(ctx context.Context, id, version int64, status string) error
	UpdateUserActivity(ctx context.Context, id int64) error

	CreateLead(ctx context.Context, lead *models.Lead) error
	GetLead(ctx context.Context, id int64) (*models.Lead, error)
	ListLeads(ctx context.Context, stage string) ([]*models.Lead, error)
	UpdateLeadStageWithVersion(ctx context.Context, id, fromVersion int64, stage string) error
	UpdateLeadNotes(ctx context.Context, id int64, notes string) error

	CreatePromotion(ctx context.Context, p *models.Promotion) error
	GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error)
	ListPromotions(ctx context.Context, activeOnly bool) ([]*models.Promotion, error)
	RedeemPromotion(ctx context.Context, code string) error
	SetPromotionActive(ctx context.Context, id int64, active bool) error

	CreateReview(ctx context.Context, r *models.Review) error
	ListProviderReviews(ctx context.Context, providerID int64) ([]*models.Review, error)

	CreateServiceArea(ctx context.Context, area *models.ServiceArea) error
	ListServiceAreas(ctx context.Context, activeOnly bool) ([]*models.ServiceArea, error)

	GetSetting(ctx context.Context, key string) (*models.SystemSetting, error)
	SetSetting(ctx context.Context, key string, value []byte) error
	GetBookingRules(ctx context.Context) (*models.BookingRules, error)

	CreateOutboxTask(ctx context.Context, task *models.OutboxTask) error
	InsertAuditEntry(ctx context.Context, entry *models.AuditEntry) error
	InsertSecurityEvent(ctx context.Context, event *models.SecurityEvent) error

	GetDashboardStats(ctx context.Context) (*database.DashboardStats, error)
	MonthlyRevenue(ctx context.Context, months int) ([]database.MonthlyRevenuePoint, error)
}

// StateRepository keeps sessions and per-key rate limits in a fast store.
type StateRepository interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Mailer sends transactional mail through the configured provider.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// AnalyticsTracker forwards domain events to the analytics endpoint.
type AnalyticsTracker interface {
	Track(ctx context.Context, event string, properties map[string]interface{}) error
}

type SheetsWriter interface {
	ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error
	AppendBooking(ctx context.Context, booking *models.Booking) error
	UpdateScheduleSheet(ctx context.Context, startDate, endDate time.Time, dailyBookings map[string][]*models.Booking, slots []string) error
}

// OutboxEnqueuer records side-effect work durably before the worker picks it up.
type OutboxEnqueuer interface {
	EnqueueTask(ctx context.Context, taskType string, entityID int64, payload interface{}) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	Transition(ctx context.Context, bookingID, version int64, target string, actorID int64) error
	AssignProvider(ctx context.Context, bookingID, version, providerID, actorID int64) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetUpcoming(ctx context.Context, customerID int64) ([]*models.Booking, error)
	GetUserBookings(ctx context.Context, customerID int64) ([]*models.Booking, error)
	GetProviderBookings(ctx context.Context, providerID int64) ([]*models.Booking, error)
	GetAvailability(ctx context.Context, start time.Time, days int) ([]*models.Availability, error)
	Quote(ctx context.Context, booking *models.Booking, promoCode string) (*models.Quote, error)
	CheckCoverage(ctx context.Context, point models.GeoPoint) (bool, error)
	LeaveReview(ctx context.Context, bookingID, customerID int64, rating int, comment string) (*models.Review, error)
	GetProviderReviews(ctx context.Context, providerID int64) ([]*models.Review, error)
}

type UserService interface {
	Register(ctx context.Context, email, password, fullName, phone string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, role, status string) ([]*models.User, error)
	ChangeStatus(ctx context.Context, id, version int64, status string, actorID int64) error
}

type LeadService interface {
	CreateLead(ctx context.Context, lead *models.Lead) error
	GetLead(ctx context.Context, id int64) (*models.Lead, error)
	ListLeads(ctx context.Context, stage string) ([]*models.Lead, error)
	AdvanceStage(ctx context.Context, id, version int64, stage string, actorID int64) error
	UpdateNotes(ctx context.Context, id int64, notes string) error
}

type PromotionService interface {
	CreatePromotion(ctx context.Context, p *models.Promotion) error
	Validate(ctx context.Context, code string, amount decimal.Decimal) (*models.Promotion, error)
	ListPromotions(ctx context.Context, activeOnly bool) ([]*models.Promotion, error)
	Deactivate(ctx context.Context, id int64) error
}
