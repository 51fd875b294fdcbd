package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cleanhive/internal/auth"
	"cleanhive/internal/config"
	"cleanhive/internal/domain"
	"cleanhive/internal/export"
	"cleanhive/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server exposes the REST API: public booking flow, authenticated customer
// endpoints, the admin surface and the partner availability widget.
type Server struct {
	cfg        config.Config
	users      domain.UserService
	bookings   domain.BookingService
	leads      domain.LeadService
	promotions domain.PromotionService
	admin      *service.AdminService
	export     *export.Service
	tokens     *auth.TokenManager
	state      domain.StateRepository
	logger     *zerolog.Logger
	server     *http.Server
}

func NewServer(
	cfg config.Config,
	users domain.UserService,
	bookings domain.BookingService,
	leads domain.LeadService,
	promotions domain.PromotionService,
	admin *service.AdminService,
	exportSvc *export.Service,
	tokens *auth.TokenManager,
	state domain.StateRepository,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:        cfg,
		users:      users,
		bookings:   bookings,
		leads:      leads,
		promotions: promotions,
		admin:      admin,
		export:     exportSvc,
		tokens:     tokens,
		state:      state,
		logger:     logger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.HTTP.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return s
}

// Router builds the full route table. Split out so tests can mount it on
// httptest.Server directly.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	partner := newPartnerAuth(s.cfg.API)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/availability", s.handleAvailability)
		r.Post("/quotes", s.handleQuote)
		r.Post("/leads", s.handleCreateLead)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/me", s.handleMe)

			r.Post("/bookings", s.handleCreateBooking)
			r.Get("/bookings", s.handleListBookings)
			r.Get("/bookings/upcoming", s.handleUpcomingBookings)
			r.Get("/bookings/{id}", s.handleGetBooking)
			r.Post("/bookings/{id}/transition", s.handleTransition)
			r.Post("/bookings/{id}/review", s.handleLeaveReview)
			r.Get("/providers/{id}/reviews", s.handleProviderReviews)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Use(s.requireRole("admin"))

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/revenue", s.handleRevenue)
			r.Get("/rules", s.handleGetRules)
			r.Put("/rules", s.handleSaveRules)
			r.Get("/audit", s.handleAudit)
			r.Get("/health", s.handleHealth)

			r.Get("/outbox/failed", s.handleFailedOutbox)
			r.Post("/outbox/{id}/requeue", s.handleRequeueOutbox)
			r.Post("/sync/schedule", s.handleSyncSchedule)
			r.Post("/sync/bookings", s.handleSyncBookings)

			r.Get("/export", s.handleExport)
			r.Get("/export/schedule", s.handleScheduleExcel)
			r.Post("/import", s.handleImport)

			r.Get("/users", s.handleListUsers)
			r.Post("/users/{id}/status", s.handleUserStatus)
			r.Post("/bookings/{id}/assign", s.handleAssignProvider)

			r.Get("/leads", s.handleListLeads)
			r.Post("/leads/{id}/stage", s.handleLeadStage)
			r.Put("/leads/{id}/notes", s.handleLeadNotes)

			r.Get("/promotions", s.handleListPromotions)
			r.Post("/promotions", s.handleCreatePromotion)
			r.Post("/promotions/{id}/deactivate", s.handleDeactivatePromotion)
		})

		r.Route("/partner", func(r chi.Router) {
			r.Use(partner.wrap)

			r.Get("/availability", s.handlePartnerAvailability)
			r.Get("/coverage", s.handlePartnerCoverage)
		})
	})

	return r
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
