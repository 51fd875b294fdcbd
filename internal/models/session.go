package models

import "time"

// Session короткоживущая сессия API, хранится в Redis с TTL.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Quote расчёт стоимости заказа до создания брони.
type Quote struct {
	Amount    string `json:"amount"`
	Discount  string `json:"discount"`
	Total     string `json:"total"`
	PromoCode string `json:"promo_code,omitempty"`
}
