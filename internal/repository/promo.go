package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hallfair/shopcore/internal/domain"
)

const codeUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// PromoRepository persists promo codes and redemptions in PostgreSQL.
type PromoRepository struct {
	db *pgxpool.Pool
}

func NewPromoRepository(db *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{db: db}
}

const promoColumns = `id, code, discount_type, discount_value, usage_limit, used_count, expires_at, is_active, created_at`

func scanPromo(row pgx.Row) (*domain.PromoCode, error) {
	var p domain.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.UsageLimit, &p.UsedCount, &p.ExpiresAt, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromoRepository) FindPromoByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	p, err := scanPromo(r.db.QueryRow(ctx, `
		SELECT `+promoColumns+`
		FROM promo_codes
		WHERE code = $1
	`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find promo by code: %w", err)
	}
	return p, nil
}

func (r *PromoRepository) InsertPromo(ctx context.Context, promo *domain.PromoCode) (*domain.PromoCode, error) {
	p, err := scanPromo(r.db.QueryRow(ctx, `
		INSERT INTO promo_codes (code, discount_type, discount_value, usage_limit, used_count, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+promoColumns+`
	`, promo.Code, promo.DiscountType, promo.DiscountValue, promo.UsageLimit, promo.UsedCount, promo.ExpiresAt, promo.IsActive))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert promo %s: %w", promo.Code, domain.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert promo: %w", err)
	}
	return p, nil
}

// IncrementPromoUsedCount bumps used_count by one only while it is below
// usage_limit, in a single atomic statement.
func (r *PromoRepository) IncrementPromoUsedCount(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE promo_codes
		SET used_count = used_count + 1
		WHERE id = $1 AND used_count < usage_limit
	`, id)
	if err != nil {
		return false, fmt.Errorf("increment used count: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PromoRepository) FindUsage(ctx context.Context, promoID, userID int64) (*domain.PromoUsage, error) {
	var u domain.PromoUsage
	err := r.db.QueryRow(ctx, `
		SELECT id, promo_code_id, user_id, order_id, discount_amount, created_at
		FROM promo_code_usage
		WHERE promo_code_id = $1 AND user_id = $2
	`, promoID, userID).Scan(&u.ID, &u.PromoCodeID, &u.UserID, &u.OrderID, &u.DiscountAmount, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find usage: %w", err)
	}
	return &u, nil
}

func (r *PromoRepository) InsertUsage(ctx context.Context, usage *domain.PromoUsage) (*domain.PromoUsage, error) {
	u := *usage
	err := r.db.QueryRow(ctx, `
		INSERT INTO promo_code_usage (promo_code_id, user_id, order_id, discount_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, usage.PromoCodeID, usage.UserID, usage.OrderID, usage.DiscountAmount).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert usage for promo %d user %d: %w", usage.PromoCodeID, usage.UserID, domain.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert usage: %w", err)
	}
	return &u, nil
}

func (r *PromoRepository) DeleteUsage(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM promo_code_usage WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete usage: %w", err)
	}
	return nil
}

func (r *PromoRepository) PromoStats(ctx context.Context) (*domain.PromoStats, error) {
	var s domain.PromoStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM promo_codes),
			(SELECT count(*) FROM promo_codes WHERE is_active),
			(SELECT count(*) FROM promo_code_usage),
			(SELECT coalesce(sum(discount_amount), 0) FROM promo_code_usage)
	`).Scan(&s.TotalCodes, &s.ActiveCodes, &s.Redemptions, &s.TotalDiscount)
	if err != nil {
		return nil, fmt.Errorf("promo stats: %w", err)
	}
	return &s, nil
}
