package service

import (
	"context"
	"errors"
	"time"

	"cleanhive/internal/database"
	"cleanhive/internal/domain"
	"cleanhive/internal/email"
	"cleanhive/internal/events"
	"cleanhive/internal/geo"
	"cleanhive/internal/metrics"
	"cleanhive/internal/models"
	"cleanhive/internal/worker"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Base prices per service type, before size modifiers.
var basePrices = map[string]decimal.Decimal{
	"standard":          decimal.NewFromInt(100),
	"deep":              decimal.NewFromInt(180),
	"move_in_out":       decimal.NewFromInt(220),
	"post_construction": decimal.NewFromInt(250),
	"office":            decimal.NewFromInt(150),
}

var (
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrReviewNotAllowed = errors.New("only completed bookings can be reviewed")
)

var (
	perBedroom  = decimal.NewFromInt(25)
	perBathroom = decimal.NewFromInt(20)
	perExtra    = decimal.NewFromInt(30)
	// per 100 sq ft above the first 500
	perSqftStep = decimal.NewFromInt(5)
)

type BookingService struct {
	repo              domain.Repository
	eventBus          domain.EventPublisher
	outbox            domain.OutboxEnqueuer
	promotions        domain.PromotionService
	minBookingAdvance int
	logger            *zerolog.Logger
}

func NewBookingService(
	repo domain.Repository,
	eventBus domain.EventPublisher,
	outbox domain.OutboxEnqueuer,
	promotions domain.PromotionService,
	minBookingAdvance int,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		repo:              repo,
		eventBus:          eventBus,
		outbox:            outbox,
		promotions:        promotions,
		minBookingAdvance: minBookingAdvance,
		logger:            logger,
	}
}

// ValidateBookingDate checks the scheduling window against the stored rules.
func (s *BookingService) ValidateBookingDate(ctx context.Context, date time.Time) error {
	rules, err := s.repo.GetBookingRules(ctx)
	if err != nil {
		return err
	}

	today := time.Now().Truncate(24 * time.Hour)
	minDate := today.AddDate(0, 0, s.minBookingAdvance)
	if date.Before(minDate) {
		return database.ErrPastDate
	}

	maxDate := today.AddDate(0, 0, rules.MaxBookingDays)
	if date.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

func (s *BookingService) validateSlot(ctx context.Context, slot string) error {
	rules, err := s.repo.GetBookingRules(ctx)
	if err != nil {
		return err
	}
	for _, ts := range rules.TimeSlots {
		if ts == slot {
			return nil
		}
	}
	return database.ErrNotAvailable
}

// checkServiceArea allows the booking when no areas are configured, otherwise
// requires at least one active area covering the zip code.
func (s *BookingService) checkServiceArea(ctx context.Context, zip string) error {
	areas, err := s.repo.ListServiceAreas(ctx, true)
	if err != nil {
		return err
	}
	if len(areas) == 0 {
		return nil
	}
	for _, area := range areas {
		if geo.AreaCoversZip(area, zip) {
			return nil
		}
	}
	return database.ErrOutsideServiceArea
}

// CheckCoverage reports whether a geographic point falls inside any active area.
func (s *BookingService) CheckCoverage(ctx context.Context, point models.GeoPoint) (bool, error) {
	areas, err := s.repo.ListServiceAreas(ctx, true)
	if err != nil {
		return false, err
	}
	if len(areas) == 0 {
		return true, nil
	}
	for _, area := range areas {
		if geo.AreaContains(area, point) {
			return true, nil
		}
	}
	return false, nil
}

// Quote prices the booking and applies the promo code without redeeming it.
func (s *BookingService) Quote(ctx context.Context, booking *models.Booking, promoCode string) (*models.Quote, error) {
	if !models.ValidServiceType(booking.ServiceType) {
		return nil, errors.New("unknown service type")
	}

	amount := basePrices[booking.ServiceType]
	amount = amount.Add(perBedroom.Mul(decimal.NewFromInt(int64(booking.Bedrooms))))
	amount = amount.Add(perBathroom.Mul(decimal.NewFromInt(int64(booking.Bathrooms))))
	amount = amount.Add(perExtra.Mul(decimal.NewFromInt(int64(len(booking.Extras)))))
	if booking.SquareFootage > 500 {
		steps := int64((booking.SquareFootage - 500) / 100)
		amount = amount.Add(perSqftStep.Mul(decimal.NewFromInt(steps)))
	}

	quote := &models.Quote{
		Amount: amount.StringFixed(2),
		Total:  amount.StringFixed(2),
	}

	if promoCode != "" {
		promo, err := s.promotions.Validate(ctx, promoCode, amount)
		if err != nil {
			return nil, err
		}
		discount := promo.Discount(amount)
		quote.Discount = discount.StringFixed(2)
		quote.Total = amount.Sub(discount).StringFixed(2)
		quote.PromoCode = promo.Code
	}

	return quote, nil
}

// CreateBooking validates the request, prices it, redeems the promo code and
// persists the booking. New bookings always start pending.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.ValidateBookingDate(ctx, booking.ScheduledDate); err != nil {
		return err
	}
	if err := s.validateSlot(ctx, booking.TimeSlot); err != nil {
		return err
	}
	if err := s.checkServiceArea(ctx, booking.ZipCode); err != nil {
		return err
	}

	quote, err := s.Quote(ctx, booking, booking.PromoCode)
	if err != nil {
		return err
	}
	total, err := decimal.NewFromString(quote.Total)
	if err != nil {
		return err
	}
	booking.Amount = total

	rules, err := s.repo.GetBookingRules(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.CreateBooking(ctx, booking, rules.SlotCapacity); err != nil {
		return err
	}

	// Redeem after the booking holds its slot; a lost race here only
	// under-counts promo usage, never overbooks.
	if booking.PromoCode != "" {
		if err := s.repo.RedeemPromotion(ctx, booking.PromoCode); err != nil {
			s.logger.Warn().Err(err).Str("code", booking.PromoCode).Int64("booking_id", booking.ID).Msg("promo redeem failed after booking create")
		} else {
			s.publishEvent(events.EventPromoRedeemed, booking, 0)
		}
	}

	metrics.IncTransition(models.StatusPending, "created")
	s.publishEvent(events.EventBookingCreated, booking, 0)
	s.enqueueAnalytics(ctx, "booking_created", booking)
	s.enqueueSheetsAppend(ctx, booking)
	s.enqueueConfirmationEmail(ctx, booking)

	return nil
}

// Transition is the single entry point for booking status changes. Illegal
// transitions are rejected before touching storage.
func (s *BookingService) Transition(ctx context.Context, bookingID, version int64, target string, actorID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := models.CheckBookingTransition(booking.Status, target); err != nil {
		metrics.IncTransition(target, "rejected")
		return err
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, bookingID, version, target); err != nil {
		metrics.IncTransition(target, "conflict")
		return err
	}
	metrics.IncTransition(target, "ok")

	updated, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil
	}

	s.publishEvent(transitionEvent(target), updated, actorID)
	s.enqueueAnalytics(ctx, "booking_"+target, updated)
	s.enqueueAudit(ctx, actorID, "booking_"+target, updated.ID)
	s.enqueueStatusEmail(ctx, updated)

	return nil
}

// AssignProvider attaches a cleaner to a booking.
func (s *BookingService) AssignProvider(ctx context.Context, bookingID, version, providerID, actorID int64) error {
	provider, err := s.repo.GetUserByID(ctx, providerID)
	if err != nil {
		return err
	}
	if !provider.IsProvider() {
		return errors.New("user is not a provider")
	}
	if provider.Status != models.UserActive {
		return errors.New("provider is not active")
	}

	if err := s.repo.AssignProviderWithVersion(ctx, bookingID, version, providerID); err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err == nil {
		s.publishEvent(events.EventProviderAssigned, booking, actorID)
		s.enqueueAudit(ctx, actorID, "provider_assigned", bookingID)
	}

	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetUpcoming(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	return s.repo.GetUpcomingBookings(ctx, customerID)
}

func (s *BookingService) GetUserBookings(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	return s.repo.GetUserBookings(ctx, customerID)
}

func (s *BookingService) GetProviderBookings(ctx context.Context, providerID int64) ([]*models.Booking, error) {
	return s.repo.GetProviderBookings(ctx, providerID)
}

// LeaveReview records the customer's rating for a finished booking. One
// review per booking; the booking must belong to the caller.
func (s *BookingService) LeaveReview(ctx context.Context, bookingID, customerID int64, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, database.ErrNotFound
	}
	if booking.Status != models.StatusCompleted {
		return nil, ErrReviewNotAllowed
	}

	review := &models.Review{
		BookingID:  bookingID,
		CustomerID: customerID,
		Rating:     rating,
		Comment:    comment,
	}
	if booking.ProviderID != nil {
		review.ProviderID = *booking.ProviderID
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	s.enqueueAudit(ctx, customerID, "review_left", bookingID)
	if s.outbox != nil {
		err := s.outbox.EnqueueTask(ctx, worker.TaskAnalyticsEvent, review.ID, map[string]interface{}{
			"event": "review_left",
			"properties": map[string]interface{}{
				"booking_id": bookingID,
				"rating":     rating,
			},
		})
		if err != nil {
			s.logger.Error().Err(err).Int64("booking_id", bookingID).Msg("analytics enqueue error")
		}
	}

	return review, nil
}

func (s *BookingService) GetProviderReviews(ctx context.Context, providerID int64) ([]*models.Review, error) {
	return s.repo.ListProviderReviews(ctx, providerID)
}

func (s *BookingService) GetAvailability(ctx context.Context, start time.Time, days int) ([]*models.Availability, error) {
	rules, err := s.repo.GetBookingRules(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetAvailabilityForPeriod(ctx, start, days, rules.TimeSlots, rules.SlotCapacity)
}

func transitionEvent(target string) string {
	switch target {
	case models.StatusConfirmed:
		return events.EventBookingConfirmed
	case models.StatusInProgress:
		return events.EventBookingStarted
	case models.StatusCompleted:
		return events.EventBookingCompleted
	case models.StatusCancelled:
		return events.EventBookingCanceled
	default:
		return "booking_" + target
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	providerID := int64(0)
	if booking.ProviderID != nil {
		providerID = *booking.ProviderID
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		CustomerID:  booking.CustomerID,
		ProviderID:  providerID,
		ServiceType: booking.ServiceType,
		Status:      booking.Status,
		Date:        booking.ScheduledDate,
		TimeSlot:    booking.TimeSlot,
		Amount:      booking.Amount.StringFixed(2),
		ChangedByID: actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueAnalytics(ctx context.Context, event string, booking *models.Booking) {
	if s.outbox == nil {
		return
	}
	err := s.outbox.EnqueueTask(ctx, worker.TaskAnalyticsEvent, booking.ID, map[string]interface{}{
		"event": event,
		"properties": map[string]interface{}{
			"booking_id":   booking.ID,
			"service_type": booking.ServiceType,
			"amount":       booking.Amount.StringFixed(2),
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("analytics enqueue error")
	}
}

func (s *BookingService) enqueueSheetsAppend(ctx context.Context, booking *models.Booking) {
	if s.outbox == nil {
		return
	}
	err := s.outbox.EnqueueTask(ctx, worker.TaskSheetsAppend, booking.ID, map[string]interface{}{
		"booking": booking,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}

func (s *BookingService) enqueueAudit(ctx context.Context, actorID int64, action string, bookingID int64) {
	if s.outbox == nil {
		return
	}
	entry := models.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "booking",
		EntityID: bookingID,
	}
	if err := s.outbox.EnqueueTask(ctx, worker.TaskAuditWrite, bookingID, entry); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", bookingID).Msg("audit enqueue error")
	}
}

func (s *BookingService) enqueueConfirmationEmail(ctx context.Context, booking *models.Booking) {
	if s.outbox == nil {
		return
	}
	customer, err := s.repo.GetUserByID(ctx, booking.CustomerID)
	if err != nil {
		return
	}
	html, err := email.BuildBookingConfirmationHTML(customer, booking)
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("render confirmation email error")
		return
	}
	err = s.outbox.EnqueueTask(ctx, worker.TaskEmailSend, booking.ID, map[string]interface{}{
		"to":      customer.Email,
		"subject": "Your cleaning is booked",
		"html":    html,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("email enqueue error")
	}
}

func (s *BookingService) enqueueStatusEmail(ctx context.Context, booking *models.Booking) {
	if s.outbox == nil {
		return
	}
	customer, err := s.repo.GetUserByID(ctx, booking.CustomerID)
	if err != nil {
		return
	}
	html, err := email.BuildBookingStatusHTML(customer, booking)
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("render status email error")
		return
	}
	err = s.outbox.EnqueueTask(ctx, worker.TaskEmailSend, booking.ID, map[string]interface{}{
		"to":      customer.Email,
		"subject": "Booking update",
		"html":    html,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("email enqueue error")
	}
}
