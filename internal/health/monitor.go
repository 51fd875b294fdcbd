package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cleanhive/internal/database"
	"cleanhive/internal/metrics"
	"cleanhive/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prober checks one external dependency.
type Prober interface {
	Name() string
	Probe(ctx context.Context) error
}

// Monitor polls all registered probers on an interval and records the results.
// A slow tick never overlaps the next one: late ticks are skipped.
type Monitor struct {
	db                *database.DB
	probers           []Prober
	interval          time.Duration
	degradedThreshold time.Duration
	probeTimeout      time.Duration
	retention         time.Duration
	logger            *zerolog.Logger
	mu                sync.Mutex
}

func NewMonitor(db *database.DB, interval time.Duration, logger *zerolog.Logger, probers ...Prober) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		db:                db,
		probers:           probers,
		interval:          interval,
		degradedThreshold: 2 * time.Second,
		probeTimeout:      10 * time.Second,
		retention:         7 * 24 * time.Hour,
		logger:            logger,
	}
}

// Start runs the poll loop until ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info().Dur("interval", m.interval).Int("probers", len(m.probers)).Msg("health monitor started")
	defer m.logger.Info().Msg("health monitor stopped")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Tick(ctx)

	pruneTicker := time.NewTicker(time.Hour)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		case <-pruneTicker.C:
			if n, err := m.db.PruneHealthChecks(ctx, m.retention); err != nil {
				m.logger.Error().Err(err).Msg("failed to prune health checks")
			} else if n > 0 {
				m.logger.Debug().Int64("pruned", n).Msg("old health checks pruned")
			}
		}
	}
}

// Tick probes every dependency once. Returns false when a previous tick is
// still running.
func (m *Monitor) Tick(ctx context.Context) bool {
	if !m.mu.TryLock() {
		m.logger.Warn().Msg("health tick skipped, previous tick still running")
		return false
	}
	defer m.mu.Unlock()

	for _, prober := range m.probers {
		m.runProbe(ctx, prober)
	}
	return true
}

func (m *Monitor) runProbe(ctx context.Context, prober Prober) {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	start := time.Now()
	err := prober.Probe(probeCtx)
	latency := time.Since(start)

	check := &models.HealthCheck{
		Dependency:   prober.Name(),
		ResponseTime: latency.Milliseconds(),
	}

	switch {
	case err != nil:
		check.Status = models.HealthError
		check.Error = err.Error()
		m.logger.Error().Err(err).Str("dependency", prober.Name()).Msg("health probe failed")
	case latency > m.degradedThreshold:
		check.Status = models.HealthDegraded
		m.logger.Warn().Str("dependency", prober.Name()).Dur("latency", latency).Msg("health probe degraded")
	default:
		check.Status = models.HealthHealthy
	}

	metrics.ObserveProbe(prober.Name(), latency.Seconds())

	if err := m.db.InsertHealthCheck(ctx, check); err != nil {
		m.logger.Error().Err(err).Str("dependency", prober.Name()).Msg("failed to record health check")
	}
}

// DatabaseProber pings the sqlite connection.
type DatabaseProber struct {
	DB *database.DB
}

func (p DatabaseProber) Name() string { return "database" }

func (p DatabaseProber) Probe(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// RedisProber pings the state store.
type RedisProber struct {
	Client *redis.Client
}

func (p RedisProber) Name() string { return "redis" }

func (p RedisProber) Probe(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}

// HTTPProber issues a HEAD request against an external endpoint.
type HTTPProber struct {
	Dependency string
	URL        string
	Client     *http.Client
}

func (p HTTPProber) Name() string { return p.Dependency }

func (p HTTPProber) Probe(ctx context.Context) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// FuncProber adapts a plain check function, e.g. a client's own connection test.
type FuncProber struct {
	Dependency string
	Fn         func(ctx context.Context) error
}

func (p FuncProber) Name() string { return p.Dependency }

func (p FuncProber) Probe(ctx context.Context) error { return p.Fn(ctx) }

// StatusError reports a server-side failure from a probed endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return http.StatusText(e.Code)
}
