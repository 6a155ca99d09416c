package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hallfair/shopcore/internal/domain"
)

// AlertRepository persists low-stock alerts in PostgreSQL. The partial unique
// index on (product_id) WHERE NOT acknowledged backs up the one-open-alert
// invariant the service layer maintains.
type AlertRepository struct {
	db *pgxpool.Pool
}

func NewAlertRepository(db *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, product_id, threshold, severity, acknowledged, acknowledged_at, acknowledged_by, created_at`

func scanAlert(row pgx.Row) (*domain.LowStockAlert, error) {
	var a domain.LowStockAlert
	err := row.Scan(&a.ID, &a.ProductID, &a.Threshold, &a.Severity, &a.Acknowledged, &a.AcknowledgedAt, &a.AcknowledgedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AlertRepository) FindOpenAlert(ctx context.Context, productID int64) (*domain.LowStockAlert, error) {
	a, err := scanAlert(r.db.QueryRow(ctx, `
		SELECT `+alertColumns+`
		FROM low_stock_alerts
		WHERE product_id = $1 AND NOT acknowledged
	`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find open alert: %w", err)
	}
	return a, nil
}

func (r *AlertRepository) InsertAlert(ctx context.Context, alert *domain.LowStockAlert) (*domain.LowStockAlert, error) {
	a, err := scanAlert(r.db.QueryRow(ctx, `
		INSERT INTO low_stock_alerts (product_id, threshold, severity, acknowledged)
		VALUES ($1, $2, $3, FALSE)
		RETURNING `+alertColumns+`
	`, alert.ProductID, alert.Threshold, alert.Severity))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert alert for product %d: %w", alert.ProductID, domain.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}
	return a, nil
}

// RefreshAlert updates an open alert in place. created_at moves forward to
// signal the condition still holds as of now.
func (r *AlertRepository) RefreshAlert(ctx context.Context, id int64, severity domain.AlertSeverity, threshold int) (*domain.LowStockAlert, error) {
	a, err := scanAlert(r.db.QueryRow(ctx, `
		UPDATE low_stock_alerts
		SET severity = $2, threshold = $3, created_at = now()
		WHERE id = $1
		RETURNING `+alertColumns+`
	`, id, severity, threshold))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("refresh alert: %w", err)
	}
	return a, nil
}

func (r *AlertRepository) AcknowledgeAlert(ctx context.Context, id, adminID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE low_stock_alerts
		SET acknowledged = TRUE, acknowledged_at = now(), acknowledged_by = $2
		WHERE id = $1 AND NOT acknowledged
	`, id, adminID)
	if err != nil {
		return false, fmt.Errorf("acknowledge alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AlertRepository) ListAlerts(ctx context.Context, acknowledged bool) ([]domain.AlertWithProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.product_id, a.threshold, a.severity, a.acknowledged, a.acknowledged_at, a.acknowledged_by, a.created_at,
		       p.name, p.stock
		FROM low_stock_alerts a
		JOIN products p ON p.id = a.product_id
		WHERE a.acknowledged = $1
		ORDER BY a.created_at DESC
	`, acknowledged)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.AlertWithProduct
	for rows.Next() {
		var a domain.AlertWithProduct
		if err := rows.Scan(&a.ID, &a.ProductID, &a.Threshold, &a.Severity, &a.Acknowledged, &a.AcknowledgedAt, &a.AcknowledgedBy, &a.CreatedAt, &a.ProductName, &a.CurrentStock); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

func (r *AlertRepository) AlertSummary(ctx context.Context) (*domain.AlertSummary, error) {
	var s domain.AlertSummary
	err := r.db.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE severity = 'warning'),
			count(*) FILTER (WHERE severity = 'critical'),
			count(*) FILTER (WHERE severity = 'out_of_stock'),
			count(*)
		FROM low_stock_alerts
		WHERE NOT acknowledged
	`).Scan(&s.Warning, &s.Critical, &s.OutOfStock, &s.Total)
	if err != nil {
		return nil, fmt.Errorf("alert summary: %w", err)
	}
	return &s, nil
}
