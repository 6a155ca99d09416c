package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hallfair/shopcore/internal/domain"
	"github.com/hallfair/shopcore/internal/retry"
)

// User-facing rejection reasons, in rule order.
const (
	ReasonCodeRequired  = "Promo code is required"
	ReasonInvalidCode   = "Invalid or expired promo code"
	ReasonLimitExceeded = "Promo code usage limit exceeded"
	ReasonExpired       = "Promo code has expired"
	ReasonAlreadyUsed   = "You have already used this promo code"
)

// Validation is the outcome of evaluating a promo code against the business
// rules. Rule failures are results, not errors; only infrastructure failures
// propagate as errors.
type Validation struct {
	Valid          bool
	Reason         string
	PromoCode      *domain.PromoCode
	DiscountAmount decimal.Decimal
}

// PromoValidator evaluates promo codes statelessly. Rules short-circuit on
// the first failure, each with a distinct reason.
type PromoValidator struct {
	store    PromoStore
	executor *retry.Executor
}

func NewPromoValidator(store PromoStore, executor *retry.Executor) *PromoValidator {
	return &PromoValidator{store: store, executor: executor}
}

// Validate checks code against the rules. userID enables the prior-use check;
// subtotal enables discount computation. Either may be nil.
func (s *PromoValidator) Validate(ctx context.Context, code string, userID *int64, subtotal *decimal.Decimal) (Validation, error) {
	return retry.Do(ctx, s.executor, "promo.validate", func(ctx context.Context) (Validation, error) {
		return s.check(ctx, code, userID, subtotal)
	})
}

// check runs the rule chain without retry wrapping; the redeemer calls it
// directly so a redemption is governed by a single retry policy.
func (s *PromoValidator) check(ctx context.Context, code string, userID *int64, subtotal *decimal.Decimal) (Validation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return s.reject(code, ReasonCodeRequired), nil
	}

	promo, err := s.store.FindPromoByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return s.reject(code, ReasonInvalidCode), nil
	}
	if err != nil {
		return Validation{}, fmt.Errorf("find promo: %w", err)
	}
	if !promo.IsActive {
		return s.reject(code, ReasonInvalidCode), nil
	}
	// Prior use is checked before the usage limit so a repeat user of an
	// exhausted code is told the truthful reason.
	if userID != nil {
		_, err := s.store.FindUsage(ctx, promo.ID, *userID)
		if err == nil {
			return s.reject(code, ReasonAlreadyUsed), nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return Validation{}, fmt.Errorf("find usage: %w", err)
		}
	}
	if promo.UsedCount >= promo.UsageLimit {
		return s.reject(code, ReasonLimitExceeded), nil
	}
	if promo.ExpiresAt != nil && promo.ExpiresAt.Before(time.Now()) {
		return s.reject(code, ReasonExpired), nil
	}

	result := Validation{Valid: true, PromoCode: promo}
	if subtotal != nil {
		result.DiscountAmount = Discount(promo, *subtotal)
	}
	return result, nil
}

func (s *PromoValidator) reject(code, reason string) Validation {
	slog.Info("promo validation rejected", "code", code, "reason", reason)
	return Validation{Reason: reason}
}

var hundred = decimal.NewFromInt(100)

// Discount computes the amount a promo takes off subtotal, clamped to
// [0, subtotal] so an order total can never go negative.
func Discount(promo *domain.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch promo.DiscountType {
	case domain.DiscountPercentage:
		amount = subtotal.Mul(promo.DiscountValue).Div(hundred)
	case domain.DiscountFixed:
		amount = promo.DiscountValue
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, subtotal)
}
