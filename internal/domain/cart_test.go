package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// helper для создания согласованной корзины с одной позицией.
func makeCart() domain.Cart {
	now := time.Now().UTC()
	return domain.Cart{
		ID:      "cart-1",
		OwnerID: "user-1",
		Items: []domain.LineItem{
			{
				ID:                     "line-1",
				ReferenceKind:          domain.ReferenceKindProduct,
				ReferenceID:            "P1",
				Qty:                    2,
				UnitPriceMinor:         2500,
				UnitOriginalPriceMinor: 2500,
				CreatedAt:              now,
			},
		},
		SubtotalMinor: 5000,
		TaxMinor:      425,
		ShippingMinor: 599,
		DiscountMinor: 0,
		TotalMinor:    6024,
		IsActive:      true,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCartValidateInvariants_Ok(t *testing.T) {
	cart := makeCart()
	if errs := cart.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestCartValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(c *domain.Cart)
	}{
		{
			name: "no owner",
			mut: func(c *domain.Cart) {
				c.OwnerID = ""
			},
		},
		{
			name: "qty below one",
			mut: func(c *domain.Cart) {
				c.Items[0].Qty = 0
			},
		},
		{
			name: "negative price",
			mut: func(c *domain.Cart) {
				c.Items[0].UnitPriceMinor = -1
			},
		},
		{
			name: "bad reference kind",
			mut: func(c *domain.Cart) {
				c.Items[0].ReferenceKind = "bundle"
			},
		},
		{
			name: "empty reference id",
			mut: func(c *domain.Cart) {
				c.Items[0].ReferenceID = ""
			},
		},
		{
			name: "duplicate line",
			mut: func(c *domain.Cart) {
				c.Items = append(c.Items, c.Items[0])
				c.SubtotalMinor *= 2
				c.TotalMinor = c.SubtotalMinor + c.TaxMinor + c.ShippingMinor - c.DiscountMinor
			},
		},
		{
			name: "subtotal mismatch",
			mut: func(c *domain.Cart) {
				c.SubtotalMinor = 999
			},
		},
		{
			name: "total mismatch",
			mut: func(c *domain.Cart) {
				c.TotalMinor = 1
			},
		},
		{
			name: "coupon without code",
			mut: func(c *domain.Cart) {
				c.Coupon = &domain.Coupon{Kind: domain.CouponKindFixed, Value: 100}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart := makeCart()
			tc.mut(&cart)

			if len(cart.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestLineItemSameLine(t *testing.T) {
	base := domain.LineItem{
		ReferenceKind: domain.ReferenceKindProduct,
		ReferenceID:   "P1",
		SelectedColor: "red",
		SelectedSize:  "M",
	}

	same := base
	same.ID = "other-id"
	same.Qty = 7
	same.UnitPriceMinor = 1
	if !base.SameLine(same) {
		t.Fatal("items differing only in id/qty/price must be the same line")
	}

	cases := []struct {
		name string
		mut  func(i *domain.LineItem)
	}{
		{name: "different reference", mut: func(i *domain.LineItem) { i.ReferenceID = "P2" }},
		{name: "different kind", mut: func(i *domain.LineItem) { i.ReferenceKind = domain.ReferenceKindDeal }},
		{name: "different color", mut: func(i *domain.LineItem) { i.SelectedColor = "blue" }},
		{name: "different size", mut: func(i *domain.LineItem) { i.SelectedSize = "L" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := base
			tc.mut(&other)
			if base.SameLine(other) {
				t.Fatalf("expected different line for case %s", tc.name)
			}
		})
	}
}

func TestCartClone_Isolated(t *testing.T) {
	cart := makeCart()
	cart.Coupon = &domain.Coupon{Code: "SAVE10", Kind: domain.CouponKindPercentage, Value: 10}

	clone := cart.Clone()
	clone.Items[0].Qty = 99
	clone.Coupon.Code = "SAVE20"

	if cart.Items[0].Qty != 2 {
		t.Fatal("clone items must not alias the original")
	}
	if cart.Coupon.Code != "SAVE10" {
		t.Fatal("clone coupon must not alias the original")
	}
}
