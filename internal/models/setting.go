package models

import (
	"encoding/json"
	"time"
)

// SystemSetting строка key -> JSON-значение для глобальной конфигурации.
type SystemSetting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BookingRules правила записи, хранятся под ключом booking_rules.
type BookingRules struct {
	SlotCapacity   int      `json:"slot_capacity"`
	MaxBookingDays int      `json:"max_booking_days"`
	TimeSlots      []string `json:"time_slots"`
}

// DefaultBookingRules применяются, пока админ не сохранил свои.
func DefaultBookingRules() BookingRules {
	return BookingRules{
		SlotCapacity:   DefaultSlotCapacity,
		MaxBookingDays: DefaultMaxBookingDays,
		TimeSlots:      []string{"08:00", "10:00", "12:00", "14:00", "16:00"},
	}
}
