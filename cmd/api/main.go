package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cleanhive/internal/analytics"
	"cleanhive/internal/api"
	"cleanhive/internal/auth"
	"cleanhive/internal/config"
	"cleanhive/internal/database"
	"cleanhive/internal/domain"
	"cleanhive/internal/email"
	"cleanhive/internal/events"
	"cleanhive/internal/export"
	"cleanhive/internal/geo"
	"cleanhive/internal/google"
	"cleanhive/internal/health"
	"cleanhive/internal/logging"
	"cleanhive/internal/metrics"
	"cleanhive/internal/models"
	"cleanhive/internal/repository"
	"cleanhive/internal/service"
	"cleanhive/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	sheetsService := initGoogleSheets(ctx, cfg, logger)
	redisClient, stateRepo := initStateRepository(ctx, cfg, logger)
	mailer := initMailer(cfg, logger)
	tracker := initAnalytics(cfg, logger)

	seedServiceAreas(ctx, cfg, db, logger)

	outboxWorker := worker.NewOutboxWorker(db, tracker, sheetsWriter(sheetsService), mailer, redisClient, worker.RetryPolicy{}, logger)
	go outboxWorker.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeEvents(eventBus, db, outboxWorker, logger)

	promotionService := service.NewPromotionService(db, logger)
	bookingService := service.NewBookingService(db, eventBus, outboxWorker, promotionService, cfg.Booking.MinBookingAdvance, logger)
	userService := service.NewUserService(db, eventBus, logger)
	leadService := service.NewLeadService(db, eventBus, outboxWorker, logger)
	adminService := service.NewAdminService(db, outboxWorker, logger)
	exportService := export.NewService(db, cfg.Exports.Path, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	go startHealthMonitor(ctx, cfg, db, redisClient, sheetsService, logger)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		go serveMetrics(cfg.Monitoring.PrometheusPort, logger)
	}

	apiServer := api.NewServer(*cfg, userService, bookingService, leadService, promotionService,
		adminService, exportService, tokens, stateRepo, logger)

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.WithComponent(baseLogger, "api-main")
	return cfg, &logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
			return err
		}
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

// seedServiceAreas applies the shipped area list once, on an empty table.
// Afterwards areas are managed through the admin surface.
func seedServiceAreas(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) {
	if cfg.Booking.ServiceAreasFile == "" {
		return
	}

	existing, err := db.ListServiceAreas(ctx, false)
	if err != nil {
		logger.Error().Err(err).Msg("service areas check failed")
		return
	}
	if len(existing) > 0 {
		return
	}

	areas, err := geo.LoadAreasFile(cfg.Booking.ServiceAreasFile)
	if err != nil {
		logger.Error().Err(err).Str("file", cfg.Booking.ServiceAreasFile).Msg("Ошибка загрузки файла зон обслуживания")
		return
	}
	for _, area := range areas {
		if err := db.CreateServiceArea(ctx, area); err != nil {
			logger.Error().Err(err).Str("area", area.Name).Msg("service area seed failed")
			return
		}
	}
	logger.Info().Int("count", len(areas)).Msg("Service areas seeded")
}

// subscribeEvents wires in-process event consumers: lifecycle logging and
// the review request mail that follows a completed cleaning.
func subscribeEvents(bus *events.EventBus, db *database.DB, outbox domain.OutboxEnqueuer, logger *zerolog.Logger) {
	lifecycle := []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingStarted,
		events.EventBookingCompleted,
		events.EventBookingCanceled,
		events.EventProviderAssigned,
	}
	for _, eventType := range lifecycle {
		bus.Subscribe(eventType, func(event *events.Event) error {
			var p events.BookingEventPayload
			if err := json.Unmarshal(event.Payload, &p); err != nil {
				return err
			}
			logger.Info().Str("event", event.Type).Int64("booking_id", p.BookingID).Msg("booking event")
			return nil
		})
	}

	bus.Subscribe(events.EventBookingCompleted, func(event *events.Event) error {
		var p events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		customer, err := db.GetUserByID(ctx, p.CustomerID)
		if err != nil {
			return err
		}
		html, err := email.BuildReviewRequestHTML(customer.FullName, p.BookingID)
		if err != nil {
			return err
		}
		return outbox.EnqueueTask(ctx, worker.TaskEmailSend, p.BookingID, map[string]interface{}{
			"to":      customer.Email,
			"subject": "How was your cleaning?",
			"html":    html,
		})
	})
}

// initGoogleSheets is optional: without credentials the sheets sinks become
// no-ops in the outbox worker.
func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		logger.Warn().Msg("Google Sheets is not configured, schedule mirroring disabled")
		return nil
	}

	svc, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}
	if err := svc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return svc
}

func sheetsWriter(svc *google.SheetsService) domain.SheetsWriter {
	if svc == nil {
		return nil
	}
	return svc
}

func initStateRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.StateRepository) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(models.DefaultSessionTTL) * time.Second
	primary := repository.NewRedisStateRepository(redisClient, ttl)
	fallback := repository.NewMemoryStateRepository(ttl)
	return redisClient, repository.NewFailoverStateRepository(primary, fallback, logger)
}

func initMailer(cfg *config.Config, logger *zerolog.Logger) domain.Mailer {
	if cfg.Email.Endpoint == "" {
		logger.Warn().Msg("Email is not configured, outgoing mail disabled")
		return nil
	}
	return email.NewMailer(cfg.Email, logger)
}

func initAnalytics(cfg *config.Config, logger *zerolog.Logger) domain.AnalyticsTracker {
	if cfg.Analytics.Endpoint == "" {
		logger.Warn().Msg("Analytics is not configured, events will be dropped")
		return analytics.Noop{}
	}
	return analytics.NewClient(cfg.Analytics, logger)
}

func startHealthMonitor(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, sheets *google.SheetsService, logger *zerolog.Logger) {
	interval, err := time.ParseDuration(cfg.Monitoring.HealthInterval)
	if err != nil {
		logger.Warn().Err(err).Str("value", cfg.Monitoring.HealthInterval).Msg("invalid health_interval, using 60s")
		interval = time.Minute
	}

	probers := []health.Prober{health.DatabaseProber{DB: db}}
	if redisClient != nil {
		probers = append(probers, health.RedisProber{Client: redisClient})
	}
	if cfg.Email.Endpoint != "" {
		probers = append(probers, health.HTTPProber{Dependency: "email", URL: cfg.Email.Endpoint})
	}
	if cfg.Analytics.Endpoint != "" {
		probers = append(probers, health.HTTPProber{Dependency: "analytics", URL: cfg.Analytics.Endpoint})
	}
	if sheets != nil {
		probers = append(probers, health.FuncProber{Dependency: "sheets", Fn: sheets.TestConnection})
	}

	health.NewMonitor(db, interval, logger, probers...).Start(ctx)
}

func serveMetrics(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("Prometheus metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
