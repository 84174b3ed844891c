package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:      "order-1",
		OwnerID: "user-1",
		Status:  domain.OrderStatusPlaced,
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
		ShippingAddress: domain.ShippingAddress{
			Line1:   "1 Main st",
			City:    "Springfield",
			Country: "US",
		},
		PaymentMethod: "card",
		CreatedAt:     now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no owner",
			mut:  func(o *domain.Order) { o.OwnerID = "" },
		},
		{
			name: "no items",
			mut:  func(o *domain.Order) { o.Items = nil; o.SubtotalMinor = 0 },
		},
		{
			name: "no shipping address",
			mut:  func(o *domain.Order) { o.ShippingAddress = domain.ShippingAddress{} },
		},
		{
			name: "no payment method",
			mut:  func(o *domain.Order) { o.PaymentMethod = "" },
		},
		{
			name: "subtotal mismatch",
			mut:  func(o *domain.Order) { o.SubtotalMinor = 1 },
		},
		{
			name: "total mismatch",
			mut:  func(o *domain.Order) { o.TotalMinor = 1 },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}
