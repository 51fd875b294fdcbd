package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Promotion struct {
	ID         int64           `json:"id"`
	Code       string          `json:"code"`
	Kind       string          `json:"kind"` // percentage или fixed
	Value      decimal.Decimal `json:"value"`
	ValidFrom  time.Time       `json:"valid_from"`
	ValidUntil time.Time       `json:"valid_until"`
	MaxUses    int64           `json:"max_uses"`
	UsedCount  int64           `json:"used_count"`
	MinAmount  decimal.Decimal `json:"min_amount"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Discount возвращает размер скидки для суммы заказа.
// Скидка не может превышать саму сумму.
func (p *Promotion) Discount(amount decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.Kind {
	case PromoPercentage:
		d = amount.Mul(p.Value).Div(decimal.NewFromInt(100)).Round(2)
	case PromoFixed:
		d = p.Value
	default:
		return decimal.Zero
	}
	if d.GreaterThan(amount) {
		return amount
	}
	return d
}
