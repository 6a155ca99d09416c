package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PromoCode is a redeemable discount token. Codes are uppercase alphanumeric
// and globally unique; they are never hard-deleted, only deactivated.
type PromoCode struct {
	ID            int64
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	UsageLimit    int
	UsedCount     int
	ExpiresAt     *time.Time
	IsActive      bool
	CreatedAt     time.Time
}

// PromoUsage records one redemption of a promo code by one user. The
// (PromoCodeID, UserID) pair is unique at the store level; the row is written
// once and never mutated. DiscountAmount is snapshotted at redemption time,
// not recomputed later.
type PromoUsage struct {
	ID             int64
	PromoCodeID    int64
	UserID         int64
	OrderID        *uuid.UUID
	DiscountAmount decimal.Decimal
	CreatedAt      time.Time
}

type PromoStats struct {
	TotalCodes    int64
	ActiveCodes   int64
	Redemptions   int64
	TotalDiscount decimal.Decimal
}
