package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cleanhive/internal/analytics"
	"cleanhive/internal/config"
	"cleanhive/internal/database"
	"cleanhive/internal/domain"
	"cleanhive/internal/email"
	"cleanhive/internal/google"
	"cleanhive/internal/health"
	"cleanhive/internal/logging"
	"cleanhive/internal/metrics"
	"cleanhive/internal/repository"
	"cleanhive/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Standalone outbox worker: drains side-effect tasks and runs the
// integration health monitor without serving HTTP traffic.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := logging.WithComponent(baseLogger, "worker-main")

	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return err
		}
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable")
		}
	}

	var (
		sheets    domain.SheetsWriter
		sheetsSvc *google.SheetsService
	)
	if cfg.Google.CredentialsFile != "" && cfg.Google.BookingSpreadSheetID != "" {
		svc, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to initialize Google Sheets service")
		} else {
			sheets = svc
			sheetsSvc = svc
		}
	}

	var mailer domain.Mailer
	if cfg.Email.Endpoint != "" {
		mailer = email.NewMailer(cfg.Email, &logger)
	}

	var tracker domain.AnalyticsTracker = analytics.Noop{}
	if cfg.Analytics.Endpoint != "" {
		tracker = analytics.NewClient(cfg.Analytics, &logger)
	}

	outboxWorker := worker.NewOutboxWorker(db, tracker, sheets, mailer, redisClient, worker.RetryPolicy{}, &logger)
	go outboxWorker.Start(ctx)

	go runHealthMonitor(ctx, cfg, db, redisClient, sheetsSvc, &logger)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	logger.Info().Msg("Worker started")
	<-ctx.Done()
	logger.Info().Msg("Shutdown complete.")
	return nil
}

func runHealthMonitor(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, sheets *google.SheetsService, logger *zerolog.Logger) {
	interval, err := time.ParseDuration(cfg.Monitoring.HealthInterval)
	if err != nil {
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
