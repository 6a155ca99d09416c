package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hallfair/shopcore/internal/domain"
	"github.com/hallfair/shopcore/internal/retry"
)

func testExecutor() *retry.Executor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return retry.NewExecutor(3, time.Millisecond, domain.IsTerminal, logger)
}

type usageKey struct {
	promoID int64
	userID  int64
}

// memPromoStore emulates the Postgres store: single-row atomic writes plus
// the uniqueness constraints on code and (promo_code_id, user_id).
type memPromoStore struct {
	mu          sync.Mutex
	nextPromoID int64
	nextUsageID int64
	promos      map[int64]*domain.PromoCode
	byCode      map[string]int64
	usages      map[int64]*domain.PromoUsage
	usageByKey  map[usageKey]int64

	// fault injection
	forcedCollisions  int
	findPromoErr      error
	insertUsageErr    error
	incrementErr      error
	incrementExceeded bool
	deleteUsageErr    error
	deletedUsages     []int64
}

func newMemPromoStore() *memPromoStore {
	return &memPromoStore{
		promos:     make(map[int64]*domain.PromoCode),
		byCode:     make(map[string]int64),
		usages:     make(map[int64]*domain.PromoUsage),
		usageByKey: make(map[usageKey]int64),
	}
}

func (s *memPromoStore) seedPromo(p domain.PromoCode) *domain.PromoCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPromoID++
	p.ID = s.nextPromoID
	p.CreatedAt = time.Now()
	s.promos[p.ID] = &p
	s.byCode[p.Code] = p.ID
	out := p
	return &out
}

func (s *memPromoStore) getPromo(id int64) domain.PromoCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.promos[id]
}

func (s *memPromoStore) usageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.usages)
}

func (s *memPromoStore) FindPromoByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findPromoErr != nil {
		return nil, s.findPromoErr
	}
	if s.forcedCollisions > 0 {
		s.forcedCollisions--
		return &domain.PromoCode{ID: -1, Code: code, IsActive: true}, nil
	}
	id, ok := s.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *s.promos[id]
	return &out, nil
}

func (s *memPromoStore) InsertPromo(_ context.Context, promo *domain.PromoCode) (*domain.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[promo.Code]; ok {
		return nil, fmt.Errorf("insert promo %s: %w", promo.Code, domain.ErrDuplicate)
	}
	s.nextPromoID++
	stored := *promo
	stored.ID = s.nextPromoID
	stored.CreatedAt = time.Now()
	s.promos[stored.ID] = &stored
	s.byCode[stored.Code] = stored.ID
	out := stored
	return &out, nil
}

func (s *memPromoStore) IncrementPromoUsedCount(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incrementErr != nil {
		return false, s.incrementErr
	}
	if s.incrementExceeded {
		return false, nil
	}
	p, ok := s.promos[id]
	if !ok || p.UsedCount >= p.UsageLimit {
		return false, nil
	}
	p.UsedCount++
	return true, nil
}

func (s *memPromoStore) FindUsage(_ context.Context, promoID, userID int64) (*domain.PromoUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usageByKey[usageKey{promoID, userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *s.usages[id]
	return &out, nil
}

func (s *memPromoStore) InsertUsage(_ context.Context, usage *domain.PromoUsage) (*domain.PromoUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertUsageErr != nil {
		return nil, s.insertUsageErr
	}
	key := usageKey{usage.PromoCodeID, usage.UserID}
	if _, ok := s.usageByKey[key]; ok {
		return nil, fmt.Errorf("insert usage: %w", domain.ErrDuplicate)
	}
	s.nextUsageID++
	stored := *usage
	stored.ID = s.nextUsageID
	stored.CreatedAt = time.Now()
	s.usages[stored.ID] = &stored
	s.usageByKey[key] = stored.ID
	out := stored
	return &out, nil
}

func (s *memPromoStore) DeleteUsage(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteUsageErr != nil {
		return s.deleteUsageErr
	}
	if u, ok := s.usages[id]; ok {
		delete(s.usageByKey, usageKey{u.PromoCodeID, u.UserID})
		delete(s.usages, id)
	}
	s.deletedUsages = append(s.deletedUsages, id)
	return nil
}

func (s *memPromoStore) PromoStats(_ context.Context) (*domain.PromoStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &domain.PromoStats{TotalDiscount: decimal.Zero}
	for _, p := range s.promos {
		stats.TotalCodes++
		if p.IsActive {
			stats.ActiveCodes++
		}
	}
	for _, u := range s.usages {
		stats.Redemptions++
		stats.TotalDiscount = stats.TotalDiscount.Add(u.DiscountAmount)
	}
	return stats, nil
}

type memProduct struct {
	name  string
	stock int
}

type memAlertStore struct {
	mu       sync.Mutex
	nextID   int64
	alerts   map[int64]*domain.LowStockAlert
	products map[int64]memProduct
}

func newMemAlertStore() *memAlertStore {
	return &memAlertStore{
		alerts:   make(map[int64]*domain.LowStockAlert),
		products: make(map[int64]memProduct),
	}
}

func (s *memAlertStore) seedProduct(id int64, name string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = memProduct{name: name, stock: stock}
}

func (s *memAlertStore) getAlert(id int64) domain.LowStockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.alerts[id]
}

func (s *memAlertStore) alertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

func (s *memAlertStore) FindOpenAlert(_ context.Context, productID int64) (*domain.LowStockAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.ProductID == productID && !a.Acknowledged {
			out := *a
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memAlertStore) InsertAlert(_ context.Context, alert *domain.LowStockAlert) (*domain.LowStockAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.ProductID == alert.ProductID && !a.Acknowledged {
			return nil, fmt.Errorf("insert alert for product %d: %w", alert.ProductID, domain.ErrDuplicate)
		}
	}
	s.nextID++
	stored := *alert
	stored.ID = s.nextID
	stored.Acknowledged = false
	stored.CreatedAt = time.Now()
	s.alerts[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *memAlertStore) RefreshAlert(_ context.Context, id int64, severity domain.AlertSeverity, threshold int) (*domain.LowStockAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.Severity = severity
	a.Threshold = threshold
	a.CreatedAt = time.Now()
	out := *a
	return &out, nil
}

func (s *memAlertStore) AcknowledgeAlert(_ context.Context, id, adminID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok || a.Acknowledged {
		return false, nil
	}
	now := time.Now()
	a.Acknowledged = true
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = &adminID
	return true, nil
}

func (s *memAlertStore) ListAlerts(_ context.Context, acknowledged bool) ([]domain.AlertWithProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AlertWithProduct
	for _, a := range s.alerts {
		if a.Acknowledged != acknowledged {
			continue
		}
		p := s.products[a.ProductID]
		out = append(out, domain.AlertWithProduct{
			LowStockAlert: *a,
			ProductName:   p.name,
			CurrentStock:  p.stock,
		})
	}
	return out, nil
}

func (s *memAlertStore) AlertSummary(_ context.Context) (*domain.AlertSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := &domain.AlertSummary{}
	for _, a := range s.alerts {
		if a.Acknowledged {
			continue
		}
		summary.Total++
		switch a.Severity {
		case domain.SeverityWarning:
			summary.Warning++
		case domain.SeverityCritical:
			summary.Critical++
		case domain.SeverityOutOfStock:
			summary.OutOfStock++
		}
	}
	return summary, nil
}
