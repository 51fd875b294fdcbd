package models

import "time"

// AuditEntry запись в журнале действий. Пишется best-effort через outbox.
type AuditEntry struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SecurityEvent подозрительная активность: неверные пароли, превышение лимитов.
type SecurityEvent struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	ActorID   int64     `json:"actor_id,omitempty"`
	RemoteIP  string    `json:"remote_ip,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthCheck результат одного пробника монитора интеграций.
type HealthCheck struct {
	ID           int64     `json:"id"`
	Dependency   string    `json:"dependency"`
	Status       string    `json:"status"` // healthy, degraded, error
	ResponseTime int64     `json:"response_time_ms"`
	Error        string    `json:"error,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
	HealthError    = "error"
)
