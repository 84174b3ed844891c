package coupon

import (
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// StaticRegistry — реестр купонов поверх статической таблицы правил.
// Коды нечувствительны к регистру.
type StaticRegistry struct {
	mu    sync.RWMutex
	rules map[string]domain.Coupon
}

// DefaultRules возвращает набор купонов витрины по умолчанию.
func DefaultRules() []domain.Coupon {
	return []domain.Coupon{
		{Code: "SAVE10", Kind: domain.CouponKindPercentage, Value: 10},
		{Code: "SAVE20", Kind: domain.CouponKindPercentage, Value: 20},
		{Code: "FREESHIP", Kind: domain.CouponKindFixed, Value: 599},
	}
}

// NewStaticRegistry создаёт реестр из переданных правил.
func NewStaticRegistry(rules []domain.Coupon) *StaticRegistry {
	registry := &StaticRegistry{
		rules: make(map[string]domain.Coupon, len(rules)),
	}
	for _, rule := range rules {
		registry.rules[normalizeCode(rule.Code)] = rule
	}
	return registry
}

// Resolve возвращает правило купона по коду или ErrInvalidCoupon.
func (r *StaticRegistry) Resolve(code string) (domain.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[normalizeCode(code)]
	if !ok {
		return domain.Coupon{}, domain.ErrInvalidCoupon
	}
	return rule, nil
}

// Register добавляет или замещает правило купона.
func (r *StaticRegistry) Register(rule domain.Coupon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[normalizeCode(rule.Code)] = rule
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ domain.CouponRegistry = (*StaticRegistry)(nil)
