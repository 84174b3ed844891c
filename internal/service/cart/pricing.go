package cart

import "github.com/vladislavdragonenkov/storefront/internal/domain"

// PricingConfig задаёт правила расчёта производных сумм корзины.
type PricingConfig struct {
	// TaxRateBps — налоговая ставка в базисных пунктах (850 = 8.5%).
	TaxRateBps int64
	// FreeShippingThresholdMinor — доставка бесплатна при подытоге строго выше порога.
	FreeShippingThresholdMinor int64
	// FlatShippingFeeMinor — фиксированная стоимость доставки ниже порога.
	FlatShippingFeeMinor int64
}

// DefaultPricingConfig возвращает ставки витрины по умолчанию:
// налог 8.5%, бесплатная доставка свыше $50, иначе $5.99.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRateBps:                 850,
		FreeShippingThresholdMinor: 5000,
		FlatShippingFeeMinor:       599,
	}
}

// Totals — результат пересчёта производных сумм.
type Totals struct {
	SubtotalMinor int64
	TaxMinor      int64
	ShippingMinor int64
	DiscountMinor int64
	TotalMinor    int64
}

// ComputeTotals пересчитывает производные суммы по позициям и купону.
// Функция чистая и детерминированная: одинаковые (items, coupon, cfg)
// всегда дают одинаковый результат.
func ComputeTotals(items []domain.LineItem, coupon *domain.Coupon, cfg PricingConfig) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += int64(item.Qty) * item.UnitPriceMinor
	}

	tax := roundHalfUp(subtotal*cfg.TaxRateBps, 10000)

	shipping := cfg.FlatShippingFeeMinor
	if subtotal > cfg.FreeShippingThresholdMinor {
		shipping = 0
	}
	// Пустая корзина ничего не стоит, в том числе доставка.
	if subtotal == 0 {
		shipping = 0
	}

	var discount int64
	if coupon != nil {
		switch coupon.Kind {
		case domain.CouponKindPercentage:
			discount = roundHalfUp(subtotal*coupon.Value, 100)
		case domain.CouponKindFixed:
			discount = coupon.Value
		}
		// Фиксированный купон не может увести итог в минус: скидка
		// ограничивается суммой subtotal+tax+shipping, итог упирается в ноль.
		if gross := subtotal + tax + shipping; discount > gross {
			discount = gross
		}
		if discount < 0 {
			discount = 0
		}
	}

	return Totals{
		SubtotalMinor: subtotal,
		TaxMinor:      tax,
		ShippingMinor: shipping,
		DiscountMinor: discount,
		TotalMinor:    subtotal + tax + shipping - discount,
	}
}

// roundHalfUp делит n на d с округлением половины вверх. Ожидает n >= 0, d > 0.
func roundHalfUp(n, d int64) int64 {
	return (n + d/2) / d
}

func applyTotals(cart *domain.Cart, totals Totals) {
	cart.SubtotalMinor = totals.SubtotalMinor
	cart.TaxMinor = totals.TaxMinor
	cart.ShippingMinor = totals.ShippingMinor
	cart.DiscountMinor = totals.DiscountMinor
	cart.TotalMinor = totals.TotalMinor
}
