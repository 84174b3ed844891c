package checkout_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/coupon"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

const owner = "user-1"

type fixture struct {
	engine   *cart.Engine
	checkout *checkout.Service
	carts    domain.CartRepository
	orders   domain.OrderRepository
}

func newFixture() *fixture {
	carts := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	return &fixture{
		engine:   cart.NewEngineWithoutMetrics(carts, coupon.NewStaticRegistry(coupon.DefaultRules()), cart.DefaultPricingConfig(), nil),
		checkout: checkout.NewServiceWithoutMetrics(carts, orders, nil),
		carts:    carts,
		orders:   orders,
	}
}

func validInput() checkout.CreateOrderInput {
	return checkout.CreateOrderInput{
		ShippingAddress: domain.ShippingAddress{
			Line1:      "12 Main St",
			City:       "Springfield",
			Region:     "IL",
			PostalCode: "62704",
			Country:    "US",
		},
		PaymentMethod: "card",
	}
}

func addItem(t *testing.T, f *fixture, refID string, qty int32, priceMinor int64) domain.Cart {
	t.Helper()
	c, err := f.engine.AddItem(owner, cart.NewItem{
		ReferenceKind:          domain.ReferenceKindProduct,
		ReferenceID:            refID,
		Qty:                    qty,
		UnitPriceMinor:         priceMinor,
		UnitOriginalPriceMinor: priceMinor,
	})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	return c
}

func TestCreateOrder_SnapshotsCartAndClearsIt(t *testing.T) {
	f := newFixture()
	addItem(t, f, "P1", 2, 2500)
	addItem(t, f, "P2", 1, 1800)
	if _, err := f.engine.ApplyCoupon(owner, "SAVE10"); err != nil {
		t.Fatalf("apply coupon failed: %v", err)
	}
	before, err := f.engine.GetOrCreate(owner)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}

	order, err := f.checkout.CreateOrder(owner, validInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.Status != domain.OrderStatusPlaced {
		t.Fatalf("expected placed status, got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if order.SubtotalMinor != before.SubtotalMinor || order.TotalMinor != before.TotalMinor {
		t.Fatalf("order totals must match cart snapshot: %+v vs %+v", order, before)
	}
	if order.Coupon == nil || order.Coupon.Code != "SAVE10" {
		t.Fatalf("expected coupon in snapshot, got %+v", order.Coupon)
	}
	if order.PaymentMethod != "card" {
		t.Fatalf("unexpected payment method %s", order.PaymentMethod)
	}

	// Корзина после оформления пуста, но остаётся активной.
	after, err := f.engine.GetOrCreate(owner)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if !after.IsEmpty() || after.Coupon != nil || after.TotalMinor != 0 {
		t.Fatalf("cart must be emptied after checkout, got %+v", after)
	}
	if after.ID != before.ID {
		t.Fatal("checkout must reuse the same cart, not create a new one")
	}
}

func TestCreateOrder_SnapshotImmutableAfterCartMutation(t *testing.T) {
	f := newFixture()
	addItem(t, f, "P1", 2, 2500)

	order, err := f.checkout.CreateOrder(owner, validInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// Дальнейшие мутации корзины не трогают сохранённый заказ.
	addItem(t, f, "P3", 5, 6200)
	stored, err := f.checkout.GetOrder(owner, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(stored.Items) != 1 || stored.TotalMinor != order.TotalMinor {
		t.Fatalf("order snapshot changed: %+v", stored)
	}
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newFixture()
	if _, err := f.engine.GetOrCreate(owner); err != nil {
		t.Fatalf("get or create failed: %v", err)
	}

	if _, err := f.checkout.CreateOrder(owner, validInput()); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCreateOrder_NoCart(t *testing.T) {
	f := newFixture()

	if _, err := f.checkout.CreateOrder(owner, validInput()); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture()
	addItem(t, f, "P1", 1, 1000)

	noAddr := validInput()
	noAddr.ShippingAddress = domain.ShippingAddress{}
	if _, err := f.checkout.CreateOrder(owner, noAddr); !errors.Is(err, domain.ErrShippingAddressRequired) {
		t.Fatalf("expected ErrShippingAddressRequired, got %v", err)
	}

	noPayment := validInput()
	noPayment.PaymentMethod = ""
	if _, err := f.checkout.CreateOrder(owner, noPayment); !errors.Is(err, domain.ErrPaymentMethodRequired) {
		t.Fatalf("expected ErrPaymentMethodRequired, got %v", err)
	}

	// Отклонённое оформление не трогает корзину.
	current, err := f.engine.GetOrCreate(owner)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if current.IsEmpty() {
		t.Fatal("cart must survive rejected checkout")
	}
}

// concurrentMutationCartRepo подменяет корзину между чтением при оформлении
// и CAS-записью, имитируя параллельную мутацию.
type concurrentMutationCartRepo struct {
	domain.CartRepository
	engine  *cart.Engine
	ownerID string
	fired   bool
}

func (r *concurrentMutationCartRepo) Save(c domain.Cart) error {
	if !r.fired && c.IsEmpty() {
		r.fired = true
		if _, err := r.engine.AddItem(r.ownerID, cart.NewItem{
			ReferenceKind:          domain.ReferenceKindProduct,
			ReferenceID:            "P9",
			Qty:                    1,
			UnitPriceMinor:         500,
			UnitOriginalPriceMinor: 500,
		}); err != nil {
			return err
		}
	}
	return r.CartRepository.Save(c)
}

func TestCreateOrder_ConflictCompensatesOrder(t *testing.T) {
	carts := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	engine := cart.NewEngineWithoutMetrics(carts, coupon.NewStaticRegistry(nil), cart.DefaultPricingConfig(), nil)

	wrapped := &concurrentMutationCartRepo{CartRepository: carts, engine: engine, ownerID: owner}
	svc := checkout.NewServiceWithoutMetrics(wrapped, orders, nil)

	if _, err := engine.AddItem(owner, cart.NewItem{
		ReferenceKind:          domain.ReferenceKindProduct,
		ReferenceID:            "P1",
		Qty:                    1,
		UnitPriceMinor:         1000,
		UnitOriginalPriceMinor: 1000,
	}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	if _, err := svc.CreateOrder(owner, validInput()); !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	// Компенсация: заказ удалён, позиции корзины целы.
	got, err := svc.ListOrders(owner, 0)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no orders after compensation, got %d", len(got))
	}
	current, err := engine.GetOrCreate(owner)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if current.IsEmpty() {
		t.Fatal("cart must keep its items after failed checkout")
	}
}

func TestGetOrder_ForeignOwnerHidden(t *testing.T) {
	f := newFixture()
	addItem(t, f, "P1", 1, 1000)

	order, err := f.checkout.CreateOrder(owner, validInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := f.checkout.GetOrder("intruder", order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign owner, got %v", err)
	}
	if _, err := f.checkout.GetOrder(owner, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for unknown id, got %v", err)
	}
}

func TestListOrders_NewestFirst(t *testing.T) {
	f := newFixture()

	for i := 0; i < 3; i++ {
		addItem(t, f, "P1", 1, 1000)
		if _, err := f.checkout.CreateOrder(owner, validInput()); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}

	got, err := f.checkout.ListOrders(owner, 0)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(got))
	}

	limited, err := f.checkout.ListOrders(owner, 2)
	if err != nil {
		t.Fatalf("limited list failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 orders with limit, got %d", len(limited))
	}
}
