package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cleanhive",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"route", "status"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cleanhive",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions, including rejected ones.",
		},
		[]string{"to", "result"},
	)

	outboxTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cleanhive",
			Name:      "outbox_tasks_total",
			Help:      "Outbox task outcomes by sink.",
		},
		[]string{"task_type", "outcome"},
	)

	probeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cleanhive",
			Name:      "health_probe_duration_seconds",
			Help:      "Latency of integration health probes.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"dependency"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, outboxTasks, probeDuration)
	})
}

// IncHTTP increments the request counter for a route/status pair.
func IncHTTP(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

// IncTransition records a booking transition attempt.
func IncTransition(to, result string) {
	bookingTransitions.WithLabelValues(to, result).Inc()
}

// IncOutbox records an outbox task outcome.
func IncOutbox(taskType, outcome string) {
	outboxTasks.WithLabelValues(taskType, outcome).Inc()
}

// ObserveProbe records one health probe duration.
func ObserveProbe(dependency string, seconds float64) {
	probeDuration.WithLabelValues(dependency).Observe(seconds)
}
