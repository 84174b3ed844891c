package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func integrationCart(ownerID string) domain.Cart {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Cart{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Items: []domain.LineItem{
			{
				ID:                     uuid.NewString(),
				ReferenceKind:          domain.ReferenceKindProduct,
				ReferenceID:            "P1",
				Qty:                    2,
				SelectedColor:          "red",
				UnitPriceMinor:         2500,
				UnitOriginalPriceMinor: 2500,
				CreatedAt:              now,
			},
		},
		SubtotalMinor: 5000,
		TaxMinor:      425,
		ShippingMinor: 599,
		TotalMinor:    6024,
		IsActive:      true,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCartRepository_Integration_CreateAndGetActive(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCartRepository(store)

	cart := integrationCart("owner-1")
	cart.Coupon = &domain.Coupon{Code: "SAVE10", Kind: domain.CouponKindPercentage, Value: 10}
	if err := repo.Create(cart); err != nil {
		t.Fatalf("create cart: %v", err)
	}

	got, err := repo.GetActive("owner-1")
	if err != nil {
		t.Fatalf("get active cart: %v", err)
	}
	if got.ID != cart.ID || got.TotalMinor != 6024 {
		t.Fatalf("unexpected cart: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].SelectedColor != "red" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if got.Coupon == nil || got.Coupon.Code != "SAVE10" {
		t.Fatalf("coupon did not round-trip: %+v", got.Coupon)
	}
}

func TestCartRepository_Integration_SecondActiveCartRejected(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCartRepository(store)

	if err := repo.Create(integrationCart("owner-1")); err != nil {
		t.Fatalf("create first cart: %v", err)
	}
	if err := repo.Create(integrationCart("owner-1")); !errors.Is(err, domain.ErrActiveCartExists) {
		t.Fatalf("expected ErrActiveCartExists, got %v", err)
	}
}

func TestCartRepository_Integration_SaveCAS(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCartRepository(store)

	cart := integrationCart("owner-1")
	if err := repo.Create(cart); err != nil {
		t.Fatalf("create cart: %v", err)
	}

	cart.Items[0].Qty = 3
	cart.SubtotalMinor = 7500
	cart.TaxMinor = 638
	cart.ShippingMinor = 0
	cart.TotalMinor = 8138
	if err := repo.Save(cart); err != nil {
		t.Fatalf("save cart: %v", err)
	}

	// Повторная запись с той же версией проигрывает CAS.
	if err := repo.Save(cart); !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	got, err := repo.GetActive("owner-1")
	if err != nil {
		t.Fatalf("get active cart: %v", err)
	}
	if got.Version != cart.Version+1 {
		t.Fatalf("expected version %d, got %d", cart.Version+1, got.Version)
	}
	if got.Items[0].Qty != 3 || got.TotalMinor != 8138 {
		t.Fatalf("unexpected cart state: %+v", got)
	}
}

func TestCartRepository_Integration_DeactivateFreesOwner(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCartRepository(store)

	cart := integrationCart("owner-1")
	if err := repo.Create(cart); err != nil {
		t.Fatalf("create cart: %v", err)
	}

	cart.IsActive = false
	if err := repo.Save(cart); err != nil {
		t.Fatalf("deactivate cart: %v", err)
	}

	if _, err := repo.GetActive("owner-1"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
	if err := repo.Create(integrationCart("owner-1")); err != nil {
		t.Fatalf("create cart after deactivation: %v", err)
	}
}

func TestCartRepository_Integration_SaveMissingCart(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCartRepository(store)

	if err := repo.Save(integrationCart("ghost")); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}
