package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hallfair/shopcore/internal/config"
	"github.com/hallfair/shopcore/internal/domain"
	"github.com/hallfair/shopcore/internal/retry"
)

// StockAlertManager maintains low-stock alerts: one open alert per product,
// refreshed while the condition persists and closed by acknowledgment.
type StockAlertManager struct {
	store     AlertStore
	executor  *retry.Executor
	threshold int
}

func NewStockAlertManager(store AlertStore, executor *retry.Executor, threshold int) *StockAlertManager {
	return &StockAlertManager{store: store, executor: executor, threshold: threshold}
}

// ClassifySeverity maps a stock level to a severity. Callers only invoke it
// for stock already below the low-stock threshold; it does not decide whether
// an alert should exist.
func ClassifySeverity(currentStock int) domain.AlertSeverity {
	switch {
	case currentStock == 0:
		return domain.SeverityOutOfStock
	case currentStock <= config.CriticalStockLevel:
		return domain.SeverityCritical
	default:
		return domain.SeverityWarning
	}
}

// CreateOrUpdate records a low-stock observation. An existing open alert for
// the product is refreshed in place (new severity, new created_at) so at most
// one open alert per product ever exists; otherwise a new unacknowledged
// alert is inserted. threshold <= 0 falls back to the configured default.
func (m *StockAlertManager) CreateOrUpdate(ctx context.Context, productID int64, currentStock, threshold int) (*domain.LowStockAlert, error) {
	if threshold <= 0 {
		threshold = m.threshold
	}
	severity := ClassifySeverity(currentStock)
	return retry.Do(ctx, m.executor, "alert.upsert", func(ctx context.Context) (*domain.LowStockAlert, error) {
		existing, err := m.store.FindOpenAlert(ctx, productID)
		if err == nil {
			alert, err := m.store.RefreshAlert(ctx, existing.ID, severity, threshold)
			if err != nil {
				return nil, fmt.Errorf("refresh alert: %w", err)
			}
			slog.Info("low stock alert refreshed",
				"alert_id", alert.ID,
				"product_id", productID,
				"severity", severity,
				"current_stock", currentStock,
			)
			return alert, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find open alert: %w", err)
		}

		alert, err := m.store.InsertAlert(ctx, &domain.LowStockAlert{
			ProductID: productID,
			Threshold: threshold,
			Severity:  severity,
		})
		if err != nil {
			return nil, fmt.Errorf("insert alert: %w", err)
		}
		slog.Info("low stock alert created",
			"alert_id", alert.ID,
			"product_id", productID,
			"severity", severity,
			"current_stock", currentStock,
		)
		return alert, nil
	})
}

// List returns alerts filtered by acknowledgment state, enriched with each
// product's current name and stock.
func (m *StockAlertManager) List(ctx context.Context, acknowledged bool) ([]domain.AlertWithProduct, error) {
	return retry.Do(ctx, m.executor, "alert.list", func(ctx context.Context) ([]domain.AlertWithProduct, error) {
		return m.store.ListAlerts(ctx, acknowledged)
	})
}

// Acknowledge closes an alert, recording who closed it and when. A missing
// alert id is a logged no-op, not a failure.
func (m *StockAlertManager) Acknowledge(ctx context.Context, alertID, adminID int64) error {
	return m.executor.Execute(ctx, "alert.acknowledge", func(ctx context.Context) error {
		ok, err := m.store.AcknowledgeAlert(ctx, alertID, adminID)
		if err != nil {
			return fmt.Errorf("acknowledge alert: %w", err)
		}
		if !ok {
			slog.Warn("acknowledge skipped, no open alert with id", "alert_id", alertID, "admin_id", adminID)
			return nil
		}
		slog.Info("low stock alert acknowledged", "alert_id", alertID, "admin_id", adminID)
		return nil
	})
}

// Summary counts open alerts by severity.
func (m *StockAlertManager) Summary(ctx context.Context) (*domain.AlertSummary, error) {
	return retry.Do(ctx, m.executor, "alert.summary", func(ctx context.Context) (*domain.AlertSummary, error) {
		return m.store.AlertSummary(ctx)
	})
}
