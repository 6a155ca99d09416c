package service

import (
	"context"

	"github.com/hallfair/shopcore/internal/domain"
)

// PromoStore is the persistence boundary for promo codes and their
// redemptions. Every operation is a single-row atomic write or read; no
// cross-call transaction is assumed. Implementations report a missing row as
// domain.ErrNotFound and a uniqueness-constraint violation as
// domain.ErrDuplicate.
type PromoStore interface {
	FindPromoByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	InsertPromo(ctx context.Context, promo *domain.PromoCode) (*domain.PromoCode, error)
	// IncrementPromoUsedCount adds one to used_count only while it is still
	// below usage_limit, reporting whether a row was updated.
	IncrementPromoUsedCount(ctx context.Context, id int64) (bool, error)
	FindUsage(ctx context.Context, promoID, userID int64) (*domain.PromoUsage, error)
	InsertUsage(ctx context.Context, usage *domain.PromoUsage) (*domain.PromoUsage, error)
	DeleteUsage(ctx context.Context, id int64) error
	PromoStats(ctx context.Context) (*domain.PromoStats, error)
}

// AlertStore persists low-stock alerts. InsertAlert and RefreshAlert together
// form the upsert that keeps at most one open alert per product.
type AlertStore interface {
	FindOpenAlert(ctx context.Context, productID int64) (*domain.LowStockAlert, error)
	InsertAlert(ctx context.Context, alert *domain.LowStockAlert) (*domain.LowStockAlert, error)
	RefreshAlert(ctx context.Context, id int64, severity domain.AlertSeverity, threshold int) (*domain.LowStockAlert, error)
	// AcknowledgeAlert reports whether an open alert with the given id existed.
	AcknowledgeAlert(ctx context.Context, id, adminID int64) (bool, error)
	ListAlerts(ctx context.Context, acknowledged bool) ([]domain.AlertWithProduct, error)
	AlertSummary(ctx context.Context) (*domain.AlertSummary, error)
}
