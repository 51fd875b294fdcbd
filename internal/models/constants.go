package models

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	RoleAdmin    = "admin"
	RoleProvider = "provider"
	RoleCustomer = "customer"
)

const (
	UserActive    = "active"
	UserInactive  = "inactive"
	UserPending   = "pending"
	UserSuspended = "suspended"
)

const (
	StageNew       = "new"
	StageContacted = "contacted"
	StageQualified = "qualified"
	StageConverted = "converted"
	StageLost      = "lost"
)

const (
	PromoPercentage = "percentage"
	PromoFixed      = "fixed"
)

const (
	// DefaultSlotCapacity число заявок на один слот, если правило не задано в настройках
	DefaultSlotCapacity = 4

	// DefaultMaxBookingDays максимальный горизонт записи
	DefaultMaxBookingDays = 90

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 20

	// RateLimitWindow окно ограничения частоты запросов, секунды
	RateLimitWindow = 60

	// DefaultSessionTTL время жизни сессионного состояния в Redis, секунды
	DefaultSessionTTL = 24 * 60 * 60
)

// ServiceTypes перечень типов уборки, принимаемых при создании заявки.
var ServiceTypes = []string{"standard", "deep", "move_in_out", "post_construction", "office"}

// ValidServiceType reports whether t is a known cleaning type.
func ValidServiceType(t string) bool {
	for _, s := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}
