package coupon_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/coupon"
)

func TestStaticRegistry_ResolveDefaults(t *testing.T) {
	registry := coupon.NewStaticRegistry(coupon.DefaultRules())

	cases := []struct {
		code  string
		kind  domain.CouponKind
		value int64
	}{
		{code: "SAVE10", kind: domain.CouponKindPercentage, value: 10},
		{code: "SAVE20", kind: domain.CouponKindPercentage, value: 20},
		{code: "FREESHIP", kind: domain.CouponKindFixed, value: 599},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rule, err := registry.Resolve(tc.code)
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if rule.Kind != tc.kind || rule.Value != tc.value {
				t.Fatalf("unexpected rule %+v", rule)
			}
		})
	}
}

func TestStaticRegistry_ResolveCaseInsensitive(t *testing.T) {
	registry := coupon.NewStaticRegistry(coupon.DefaultRules())

	rule, err := registry.Resolve("  save10 ")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if rule.Code != "SAVE10" {
		t.Fatalf("expected canonical code, got %s", rule.Code)
	}
}

func TestStaticRegistry_ResolveUnknown(t *testing.T) {
	registry := coupon.NewStaticRegistry(coupon.DefaultRules())

	if _, err := registry.Resolve("NOPE"); !errors.Is(err, domain.ErrInvalidCoupon) {
		t.Fatalf("expected ErrInvalidCoupon, got %v", err)
	}
}

func TestStaticRegistry_Register(t *testing.T) {
	registry := coupon.NewStaticRegistry(nil)
	registry.Register(domain.Coupon{Code: "VIP50", Kind: domain.CouponKindFixed, Value: 5000})

	rule, err := registry.Resolve("vip50")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if rule.Value != 5000 {
		t.Fatalf("unexpected value %d", rule.Value)
	}
}
