package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cleanhive/internal/database"
	"cleanhive/internal/domain"
	"cleanhive/internal/models"
	"cleanhive/internal/worker"

	"github.com/rs/zerolog"
)

// AdminService aggregates reporting and operational controls behind the
// admin surface: dashboard, booking rules, outbox replay, schedule sync.
type AdminService struct {
	db     *database.DB
	outbox domain.OutboxEnqueuer
	logger *zerolog.Logger
}

func NewAdminService(db *database.DB, outbox domain.OutboxEnqueuer, logger *zerolog.Logger) *AdminService {
	return &AdminService{db: db, outbox: outbox, logger: logger}
}

func (s *AdminService) DashboardStats(ctx context.Context) (*database.DashboardStats, error) {
	return s.db.GetDashboardStats(ctx)
}

func (s *AdminService) RevenueReport(ctx context.Context, months int) ([]database.MonthlyRevenuePoint, error) {
	return s.db.MonthlyRevenue(ctx, months)
}

func (s *AdminService) BookingRules(ctx context.Context) (*models.BookingRules, error) {
	return s.db.GetBookingRules(ctx)
}

// SaveBookingRules validates and stores the booking rules setting.
func (s *AdminService) SaveBookingRules(ctx context.Context, rules *models.BookingRules) error {
	if rules.SlotCapacity <= 0 {
		return fmt.Errorf("slot capacity must be positive")
	}
	if rules.MaxBookingDays <= 0 {
		return fmt.Errorf("max booking days must be positive")
	}
	if len(rules.TimeSlots) == 0 {
		return fmt.Errorf("at least one time slot is required")
	}
	for _, slot := range rules.TimeSlots {
		if _, err := time.Parse("15:04", slot); err != nil {
			return fmt.Errorf("invalid time slot %q", slot)
		}
	}

	value, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal booking rules: %w", err)
	}
	return s.db.SetSetting(ctx, "booking_rules", value)
}

func (s *AdminService) ListAuditEntries(ctx context.Context, entity string, entityID int64, limit int) ([]*models.AuditEntry, error) {
	return s.db.ListAuditEntries(ctx, entity, entityID, limit)
}

func (s *AdminService) FailedOutboxTasks(ctx context.Context) ([]models.OutboxTask, error) {
	return s.db.GetFailedOutboxTasks(ctx)
}

// RequeueOutboxTask puts a failed side-effect task back in line.
func (s *AdminService) RequeueOutboxTask(ctx context.Context, id int64) error {
	return s.db.RequeueOutboxTask(ctx, id)
}

// SyncSchedule queues a full schedule mirror to the spreadsheet.
func (s *AdminService) SyncSchedule(ctx context.Context, start time.Time, days int) error {
	if s.outbox == nil {
		return fmt.Errorf("outbox is not configured")
	}
	if days <= 0 {
		days = 14
	}
	end := start.AddDate(0, 0, days-1)
	return s.outbox.EnqueueTask(ctx, worker.TaskSheetsSchedule, 0, map[string]interface{}{
		"start": start,
		"end":   end,
	})
}

// SyncBookings queues a full rewrite of the bookings sheet for the period.
func (s *AdminService) SyncBookings(ctx context.Context, start time.Time, days int) error {
	if s.outbox == nil {
		return fmt.Errorf("outbox is not configured")
	}
	if days <= 0 {
		days = 14
	}
	end := start.AddDate(0, 0, days-1)
	return s.outbox.EnqueueTask(ctx, worker.TaskSheetsMirror, 0, map[string]interface{}{
		"start": start,
		"end":   end,
	})
}

func (s *AdminService) LatestHealthChecks(ctx context.Context) ([]*models.HealthCheck, error) {
	return s.db.LatestHealthChecks(ctx)
}
