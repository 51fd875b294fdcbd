package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID             int64           `json:"id"`
	CustomerID     int64           `json:"customer_id"`
	ProviderID     *int64          `json:"provider_id,omitempty"`
	ServiceType    string          `json:"service_type"`
	ScheduledDate  time.Time       `json:"scheduled_date"`
	TimeSlot       string          `json:"time_slot"` // HH:MM, начало слота
	Address        string          `json:"address"`
	ZipCode        string          `json:"zip_code"`
	Bedrooms       int             `json:"bedrooms"`
	Bathrooms      int             `json:"bathrooms"`
	SquareFootage  int             `json:"square_footage"`
	Extras         []string        `json:"extras,omitempty"`
	Instructions   string          `json:"instructions,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PromoCode      string          `json:"promo_code,omitempty"`
	Status         string          `json:"status"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int64           `json:"version"`
}

// Availability описывает загрузку слота на дату.
type Availability struct {
	Date      time.Time `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Booked    int64     `json:"booked"`
	Available int64     `json:"available"`
}
