package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hallfair/shopcore/internal/domain"
	"github.com/hallfair/shopcore/internal/retry"
)

// Redemption is the result of a successful redemption.
type Redemption struct {
	PromoCode      *domain.PromoCode
	UsageID        int64
	DiscountAmount decimal.Decimal
}

// PromoRedeemer permanently associates a promo code with a user. The store
// offers single-row atomic writes plus one uniqueness constraint and nothing
// else, so the redemption protocol is validate, insert the usage row, then
// conditionally increment the counter, compensating with a usage delete when
// the increment fails.
type PromoRedeemer struct {
	store     PromoStore
	validator *PromoValidator
	executor  *retry.Executor
}

func NewPromoRedeemer(store PromoStore, validator *PromoValidator, executor *retry.Executor) *PromoRedeemer {
	return &PromoRedeemer{store: store, validator: validator, executor: executor}
}

// Redeem records a redemption of code by userID. The uniqueness constraint on
// (promo_code_id, user_id) is the exactly-once guarantee: of two concurrent
// redemptions by the same user, exactly one insert succeeds and the loser
// gets domain.ErrPromoAlreadyUsed. Business rejections are terminal; only
// transient store failures retry.
func (s *PromoRedeemer) Redeem(ctx context.Context, code string, userID int64, orderID *uuid.UUID, subtotal *decimal.Decimal) (*Redemption, error) {
	return retry.Do(ctx, s.executor, "promo.redeem", func(ctx context.Context) (*Redemption, error) {
		return s.redeem(ctx, code, userID, orderID, subtotal)
	})
}

func (s *PromoRedeemer) redeem(ctx context.Context, code string, userID int64, orderID *uuid.UUID, subtotal *decimal.Decimal) (*Redemption, error) {
	v, err := s.validator.check(ctx, code, &userID, subtotal)
	if err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPromo, v.Reason)
	}
	promo := v.PromoCode

	usage, err := s.store.InsertUsage(ctx, &domain.PromoUsage{
		PromoCodeID:    promo.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: v.DiscountAmount,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Lost the race to a concurrent redemption by the same user.
			return nil, domain.ErrPromoAlreadyUsed
		}
		return nil, fmt.Errorf("insert usage: %w", err)
	}

	updated, err := s.store.IncrementPromoUsedCount(ctx, promo.ID)
	if err == nil && !updated {
		// Another redemption consumed the last slot between validation and
		// the increment.
		err = domain.ErrPromoUsageExceeded
	}
	if err != nil {
		// The usage row must not outlive a failed counter increment, or the
		// accounting invariant used_count <= usage_limit breaks.
		if delErr := s.store.DeleteUsage(ctx, usage.ID); delErr != nil {
			slog.Error("failed to roll back promo usage, manual reconciliation required",
				"usage_id", usage.ID,
				"promo_id", promo.ID,
				"user_id", userID,
				"increment_error", err,
				"rollback_error", delErr,
			)
		} else {
			slog.Warn("promo usage rolled back after increment failure",
				"usage_id", usage.ID,
				"promo_id", promo.ID,
				"user_id", userID,
				"error", err,
			)
		}
		if domain.IsTerminal(err) {
			return nil, err
		}
		return nil, fmt.Errorf("increment used count: %w", err)
	}

	slog.Info("promo code redeemed",
		"code", promo.Code,
		"promo_id", promo.ID,
		"user_id", userID,
		"usage_id", usage.ID,
		"discount", v.DiscountAmount,
	)
	return &Redemption{PromoCode: promo, UsageID: usage.ID, DiscountAmount: v.DiscountAmount}, nil
}
