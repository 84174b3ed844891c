package integration

import (
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/coupon"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// CartLifecycleTestSuite тестирует полный жизненный цикл корзины:
// от первого добавления товара до оформления заказа.
type CartLifecycleTestSuite struct {
	suite.Suite
	engine   *cart.Engine
	checkout *checkout.Service
	catalog  *catalog.MockService
	carts    domain.CartRepository
	orders   domain.OrderRepository
}

func (suite *CartLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.carts = memory.NewCartRepository()
	suite.orders = memory.NewOrderRepository()
	suite.catalog = catalog.NewMockService()

	suite.engine = cart.NewEngineWithoutMetrics(
		suite.carts,
		coupon.NewStaticRegistry(coupon.DefaultRules()),
		cart.DefaultPricingConfig(),
		logger,
	)
	suite.checkout = checkout.NewServiceWithoutMetrics(suite.carts, suite.orders, logger)
}

func (suite *CartLifecycleTestSuite) addFromCatalog(ownerID, refID string, qty int32) domain.Cart {
	entry, err := suite.catalog.Lookup(domain.ReferenceKindProduct, refID)
	require.NoError(suite.T(), err)

	updated, err := suite.engine.AddItem(ownerID, cart.NewItem{
		ReferenceKind:          entry.ReferenceKind,
		ReferenceID:            entry.ReferenceID,
		Qty:                    qty,
		UnitPriceMinor:         entry.PriceMinor,
		UnitOriginalPriceMinor: entry.OriginalPriceMinor,
	})
	require.NoError(suite.T(), err)
	return updated
}

func (suite *CartLifecycleTestSuite) checkoutInput() checkout.CreateOrderInput {
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

// TestFullLifecycle проходит сценарий витрины целиком: товары, купон, заказ.
func (suite *CartLifecycleTestSuite) TestFullLifecycle() {
	const owner = "customer-1"

	// 2 x $25.00 + 1 x $18.00.
	suite.addFromCatalog(owner, "P1", 2)
	withItems := suite.addFromCatalog(owner, "P2", 1)
	require.Len(suite.T(), withItems.Items, 2)
	require.Equal(suite.T(), int64(6800), withItems.SubtotalMinor)
	// Подытог $68.00 выше порога — доставка бесплатна.
	require.Equal(suite.T(), int64(0), withItems.ShippingMinor)

	withCoupon, err := suite.engine.ApplyCoupon(owner, "SAVE10")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(680), withCoupon.DiscountMinor)

	order, err := suite.checkout.CreateOrder(owner, suite.checkoutInput())
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), domain.OrderStatusPlaced, order.Status)
	require.Equal(suite.T(), withCoupon.TotalMinor, order.TotalMinor)
	require.NotNil(suite.T(), order.Coupon)

	// Корзина опустела, заказ читается обратно.
	after, err := suite.engine.GetOrCreate(owner)
	require.NoError(suite.T(), err)
	require.True(suite.T(), after.IsEmpty())
	require.Nil(suite.T(), after.Coupon)

	stored, err := suite.checkout.GetOrder(owner, order.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), stored.Items, 2)

	// Следующий цикл покупок использует ту же активную корзину.
	again := suite.addFromCatalog(owner, "P3", 1)
	require.Equal(suite.T(), after.ID, again.ID)
}

// TestOwnersAreIsolated проверяет, что корзины владельцев не пересекаются.
func (suite *CartLifecycleTestSuite) TestOwnersAreIsolated() {
	first := suite.addFromCatalog("customer-1", "P1", 1)
	second := suite.addFromCatalog("customer-2", "P2", 2)

	require.NotEqual(suite.T(), first.ID, second.ID)

	cartOne, err := suite.engine.GetOrCreate("customer-1")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), cartOne.Items, 1)
	require.Equal(suite.T(), "P1", cartOne.Items[0].ReferenceID)
}

// TestConcurrentShoppers гоняет параллельные мутации разных владельцев.
func (suite *CartLifecycleTestSuite) TestConcurrentShoppers() {
	owners := []string{"c1", "c2", "c3", "c4"}

	var wg sync.WaitGroup
	for _, owner := range owners {
		wg.Add(1)
		go func(owner string) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				suite.addFromCatalog(owner, "P1", 1)
			}
		}(owner)
	}
	wg.Wait()

	for _, owner := range owners {
		got, err := suite.engine.GetOrCreate(owner)
		require.NoError(suite.T(), err)
		require.Len(suite.T(), got.Items, 1)
		require.Equal(suite.T(), int32(5), got.Items[0].Qty)
	}
}

// TestDoubleCheckoutRejected: вторая попытка оформить пустую корзину отклоняется.
func (suite *CartLifecycleTestSuite) TestDoubleCheckoutRejected() {
	const owner = "customer-1"
	suite.addFromCatalog(owner, "P1", 1)

	_, err := suite.checkout.CreateOrder(owner, suite.checkoutInput())
	require.NoError(suite.T(), err)

	_, err = suite.checkout.CreateOrder(owner, suite.checkoutInput())
	require.ErrorIs(suite.T(), err, domain.ErrEmptyCart)

	orders, err := suite.checkout.ListOrders(owner, 0)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 1)
}

func TestCartLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(CartLifecycleTestSuite))
}
