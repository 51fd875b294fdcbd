package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cleanhive/internal/database"
	"cleanhive/internal/domain"
	"cleanhive/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrPromoInactive  = errors.New("promotion is not active")
	ErrPromoExpired   = errors.New("promotion is outside its validity window")
	ErrPromoMinAmount = errors.New("order amount below promotion minimum")
)

type PromotionService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewPromotionService(repo domain.Repository, logger *zerolog.Logger) *PromotionService {
	return &PromotionService{repo: repo, logger: logger}
}

func (s *PromotionService) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if p.Code == "" {
		return errors.New("promotion code is required")
	}
	if p.Kind != models.PromoPercentage && p.Kind != models.PromoFixed {
		return errors.New("unknown promotion kind")
	}
	if p.Value.LessThanOrEqual(decimal.Zero) {
		return errors.New("promotion value must be positive")
	}
	if p.Kind == models.PromoPercentage && p.Value.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("percentage promotion cannot exceed 100")
	}
	return s.repo.CreatePromotion(ctx, p)
}

// Validate checks the code against activity, window, usage and minimum amount
// without consuming a redemption.
func (s *PromotionService) Validate(ctx context.Context, code string, amount decimal.Decimal) (*models.Promotion, error) {
	promo, err := s.repo.GetPromotionByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !promo.IsActive {
		return nil, ErrPromoInactive
	}

	now := time.Now()
	if now.Before(promo.ValidFrom) || now.After(promo.ValidUntil) {
		return nil, ErrPromoExpired
	}

	if promo.MaxUses > 0 && promo.UsedCount >= promo.MaxUses {
		return nil, database.ErrPromoExhausted
	}

	if promo.MinAmount.GreaterThan(decimal.Zero) && amount.LessThan(promo.MinAmount) {
		return nil, ErrPromoMinAmount
	}

	return promo, nil
}

func (s *PromotionService) ListPromotions(ctx context.Context, activeOnly bool) ([]*models.Promotion, error) {
	return s.repo.ListPromotions(ctx, activeOnly)
}

func (s *PromotionService) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetPromotionActive(ctx, id, false)
}
