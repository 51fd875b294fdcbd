package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cleanhive/internal/auth"
	"cleanhive/internal/models"

	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.FullName) == "" {
		writeError(w, http.StatusBadRequest, "email and full_name are required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Password, req.FullName, req.Phone)
	if err != nil {
		if strings.Contains(err.Error(), "password") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if s.state != nil && s.cfg.Auth.LoginRateLimit > 0 {
		window := time.Duration(s.cfg.Auth.LoginRateWindow) * time.Second
		allowed, err := s.state.CheckRateLimit(r.Context(), "login:"+remoteHost(r), s.cfg.Auth.LoginRateLimit, window)
		if err == nil && !allowed {
			writeError(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}
	}

	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if s.state != nil {
		session := &models.Session{
			Token:     token,
			UserID:    user.ID,
			Role:      user.Role,
			CreatedAt: time.Now(),
			ExpiresAt: expiresAt,
		}
		if err := s.state.SetSession(r.Context(), session); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to store session")
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token, _ := strings.CutPrefix(header, "Bearer ")
	if s.state != nil {
		if err := s.state.ClearSession(r.Context(), strings.TrimSpace(token)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to clear session")
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	user, err := s.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	start, days, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	slots, err := s.bookings.GetAvailability(r.Context(), start, days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"availability": slots})
}

type quoteRequest struct {
	ServiceType   string   `json:"service_type"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	SquareFootage int      `json:"square_footage"`
	Extras        []string `json:"extras"`
	PromoCode     string   `json:"promo_code"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booking := &models.Booking{
		ServiceType:   req.ServiceType,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		SquareFootage: req.SquareFootage,
		Extras:        req.Extras,
	}

	quote, err := s.bookings.Quote(r.Context(), booking, req.PromoCode)
	if err != nil {
		if strings.Contains(err.Error(), "service type") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type createLeadRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Kind  string `json:"kind"`
	Notes string `json:"notes"`
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	lead := &models.Lead{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Kind:  req.Kind,
		Notes: req.Notes,
	}
	if err := s.leads.CreateLead(r.Context(), lead); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

type createBookingRequest struct {
	ServiceType    string   `json:"service_type"`
	ScheduledDate  string   `json:"scheduled_date"`
	TimeSlot       string   `json:"time_slot"`
	Address        string   `json:"address"`
	ZipCode        string   `json:"zip_code"`
	Bedrooms       int      `json:"bedrooms"`
	Bathrooms      int      `json:"bathrooms"`
	SquareFootage  int      `json:"square_footage"`
	Extras         []string `json:"extras"`
	Instructions   string   `json:"instructions"`
	PromoCode      string   `json:"promo_code"`
	IdempotencyKey string   `json:"idempotency_key"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req createBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scheduled_date; expected YYYY-MM-DD")
		return
	}
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.ZipCode) == "" {
		writeError(w, http.StatusBadRequest, "address and zip_code are required")
		return
	}

	booking := &models.Booking{
		CustomerID:     claims.UserID,
		ServiceType:    req.ServiceType,
		ScheduledDate:  date,
		TimeSlot:       req.TimeSlot,
		Address:        req.Address,
		ZipCode:        req.ZipCode,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		SquareFootage:  req.SquareFootage,
		Extras:         req.Extras,
		Instructions:   req.Instructions,
		PromoCode:      req.PromoCode,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.bookings.CreateBooking(r.Context(), booking); err != nil {
		if strings.Contains(err.Error(), "service type") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var (
		bookings []*models.Booking
		err      error
	)
	if claims.Role == models.RoleProvider {
		// providers see assignments, not their own orders
		bookings, err = s.bookings.GetProviderBookings(r.Context(), claims.UserID)
	} else {
		bookings, err = s.bookings.GetUserBookings(r.Context(), claims.UserID)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleUpcomingBookings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	bookings, err := s.bookings.GetUpcoming(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !canSeeBooking(claims.UserID, claims.Role, booking) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type transitionRequest struct {
	Status  string `json:"status"`
	Version int64  `json:"version"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := models.ParseBookingStatus(req.Status); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !transitionAllowedFor(claims, booking, req.Status) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := s.bookings.Transition(r.Context(), id, req.Version, req.Status, claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleLeaveReview(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	review, err := s.bookings.LeaveReview(r.Context(), id, claims.UserID, req.Rating, req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleProviderReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reviews, err := s.bookings.GetProviderReviews(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// transitionAllowedFor encodes who may request which move. Admins can do
// anything; customers may only cancel their own bookings; providers may
// start or complete jobs assigned to them.
func transitionAllowedFor(claims *auth.Claims, booking *models.Booking, target string) bool {
	switch claims.Role {
	case models.RoleAdmin:
		return true
	case models.RoleProvider:
		if booking.ProviderID == nil || *booking.ProviderID != claims.UserID {
			return false
		}
		return target == models.StatusInProgress || target == models.StatusCompleted
	default:
		return booking.CustomerID == claims.UserID && target == models.StatusCancelled
	}
}

func canSeeBooking(userID int64, role string, booking *models.Booking) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleProvider:
		return booking.ProviderID != nil && *booking.ProviderID == userID
	default:
		return booking.CustomerID == userID
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (time.Time, int, bool) {
	start := time.Now().AddDate(0, 0, 1)
	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start; expected YYYY-MM-DD")
			return time.Time{}, 0, false
		}
		start = parsed
	}

	days := 7
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 60 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 60")
			return time.Time{}, 0, false
		}
		days = parsed
	}
	return start, days, true
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
