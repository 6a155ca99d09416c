package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hallfair/shopcore/internal/config"
	"github.com/hallfair/shopcore/internal/domain"
	"github.com/hallfair/shopcore/internal/retry"
)

// GenerateParams describes a promo code to be issued. Zero values fall back
// to the defaults: 30-day expiry and a single use.
type GenerateParams struct {
	DiscountType   domain.DiscountType
	DiscountValue  decimal.Decimal
	ExpirationDays int
	UsageLimit     int
	Prefix         string
}

// PromoIssuer creates promo codes, retrying candidate generation on
// collisions before persisting.
type PromoIssuer struct {
	store    PromoStore
	executor *retry.Executor
}

func NewPromoIssuer(store PromoStore, executor *retry.Executor) *PromoIssuer {
	return &PromoIssuer{store: store, executor: executor}
}

// Generate issues a new promo code. Transient store failures retry the whole
// unit; exhausting all candidate codes is terminal.
func (s *PromoIssuer) Generate(ctx context.Context, params GenerateParams) (*domain.PromoCode, error) {
	if params.ExpirationDays <= 0 {
		params.ExpirationDays = config.DefaultExpirationDays
	}
	if params.UsageLimit <= 0 {
		params.UsageLimit = config.DefaultUsageLimit
	}
	return retry.Do(ctx, s.executor, "promo.generate", func(ctx context.Context) (*domain.PromoCode, error) {
		return s.generate(ctx, params)
	})
}

func (s *PromoIssuer) generate(ctx context.Context, params GenerateParams) (*domain.PromoCode, error) {
	slog.Info("generating promo code",
		"discount_type", params.DiscountType,
		"discount_value", params.DiscountValue,
		"prefix", params.Prefix,
	)

	var code string
	attempts := 0
	for attempts < config.MaxCodeAttempts {
		attempts++
		candidate := GenerateCode(params.Prefix)
		_, err := s.store.FindPromoByCode(ctx, candidate)
		if err == nil {
			slog.Warn("promo code collision", "code", candidate, "attempt", attempts)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("check candidate code: %w", err)
		}
		code = candidate
		break
	}
	if code == "" {
		slog.Error("promo code namespace exhausted", "prefix", params.Prefix, "attempts", attempts)
		return nil, fmt.Errorf("%w after %d attempts", domain.ErrCodeSpaceExhausted, attempts)
	}

	expiresAt := time.Now().AddDate(0, 0, params.ExpirationDays)
	created, err := s.store.InsertPromo(ctx, &domain.PromoCode{
		Code:          code,
		DiscountType:  params.DiscountType,
		DiscountValue: params.DiscountValue,
		UsageLimit:    params.UsageLimit,
		UsedCount:     0,
		ExpiresAt:     &expiresAt,
		IsActive:      true,
	})
	if err != nil {
		// A duplicate here means we lost an insert race after the existence
		// check; the error is not terminal, so the executor picks a fresh
		// candidate on the next attempt.
		return nil, fmt.Errorf("insert promo: %w", err)
	}

	slog.Info("promo code generated",
		"code", created.Code,
		"id", created.ID,
		"attempts", attempts,
		"expires_at", created.ExpiresAt,
	)
	return created, nil
}

// WelcomePromo issues the fixed-parameter welcome code: 15% off, 30-day
// expiry, single use.
func (s *PromoIssuer) WelcomePromo(ctx context.Context) (*domain.PromoCode, error) {
	return s.Generate(ctx, GenerateParams{
		DiscountType:   domain.DiscountPercentage,
		DiscountValue:  decimal.NewFromInt(config.WelcomeDiscountPercent),
		ExpirationDays: config.DefaultExpirationDays,
		UsageLimit:     config.DefaultUsageLimit,
		Prefix:         config.WelcomePrefix,
	})
}

// Stats returns aggregate promo counters for the admin dashboard.
func (s *PromoIssuer) Stats(ctx context.Context) (*domain.PromoStats, error) {
	return retry.Do(ctx, s.executor, "promo.stats", func(ctx context.Context) (*domain.PromoStats, error) {
		return s.store.PromoStats(ctx)
	})
}
