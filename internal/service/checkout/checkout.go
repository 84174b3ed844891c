package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// CreateOrderInput — данные оформления заказа от покупателя.
type CreateOrderInput struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

func (in CreateOrderInput) validate() error {
	if in.ShippingAddress.Line1 == "" || in.ShippingAddress.City == "" {
		return domain.ErrShippingAddressRequired
	}
	if in.PaymentMethod == "" {
		return domain.ErrPaymentMethodRequired
	}
	return nil
}

// Service оформляет заказ из активной корзины владельца: снимает снимок
// позиций и сумм, сохраняет заказ и опустошает корзину одной CAS-записью.
type Service struct {
	carts    domain.CartRepository
	orders   domain.OrderRepository
	logger   *log.Entry
	metrics  *metrics.CartMetrics
	producer *kafka.Producer
}

// NewService создаёт сервис оформления заказов.
func NewService(
	carts domain.CartRepository,
	orders domain.OrderRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Service{
		carts:   carts,
		orders:  orders,
		logger:  logger,
		metrics: metrics.NewCartMetrics(),
	}
}

// NewServiceWithKafka создаёт сервис, публикующий события заказов в Kafka.
func NewServiceWithKafka(
	carts domain.CartRepository,
	orders domain.OrderRepository,
	producer *kafka.Producer,
	logger *log.Entry,
) *Service {
	svc := NewService(carts, orders, logger)
	svc.producer = producer
	return svc
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	carts domain.CartRepository,
	orders domain.OrderRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Service{
		carts:  carts,
		orders: orders,
		logger: logger,
	}
}

// CreateOrder превращает активную корзину владельца в заказ.
//
// Корзина опустошается той же версией, что была прочитана: если между чтением
// и записью корзину изменила параллельная мутация, оформление отменяется и
// уже созданный заказ удаляется. Так две параллельные попытки оформления
// не породят два заказа из одной корзины.
func (s *Service) CreateOrder(ownerID string, in CreateOrderInput) (domain.Order, error) {
	if ownerID == "" {
		return domain.Order{}, domain.ErrOwnerRequired
	}
	if err := in.validate(); err != nil {
		s.recordFailure()
		return domain.Order{}, err
	}

	cart, err := s.carts.GetActive(ownerID)
	if err != nil {
		s.recordFailure()
		return domain.Order{}, err
	}
	if cart.IsEmpty() {
		s.recordFailure()
		return domain.Order{}, domain.ErrEmptyCart
	}

	order := snapshotOrder(&cart, in)
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		s.recordFailure()
		return domain.Order{}, errors.Join(errs...)
	}

	if err := s.orders.Create(order); err != nil {
		s.recordFailure()
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	// Опустошение без повторов: конфликт версии означает, что корзина
	// изменилась после снимка, и заказ больше ей не соответствует.
	cleared := cart
	cleared.Items = nil
	cleared.Coupon = nil
	cleared.SubtotalMinor = 0
	cleared.TaxMinor = 0
	cleared.ShippingMinor = 0
	cleared.DiscountMinor = 0
	cleared.TotalMinor = 0
	cleared.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(cleared); err != nil {
		s.compensate(order.ID)
		s.recordFailure()
		if domain.IsVersionConflict(err) {
			return domain.Order{}, domain.ErrCartVersionConflict
		}
		return domain.Order{}, fmt.Errorf("clear cart after checkout: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCheckoutCompleted()
	}
	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"owner_id":    ownerID,
		"total_minor": order.TotalMinor,
		"items":       len(order.Items),
	}).Info("order created from cart")

	s.publishOrderEvent(&order, cart.ID)
	return order, nil
}

// GetOrder возвращает заказ владельца по идентификатору.
// Чужой заказ не раскрывается: для постороннего владельца это ErrOrderNotFound.
func (s *Service) GetOrder(ownerID, orderID string) (domain.Order, error) {
	if ownerID == "" {
		return domain.Order{}, domain.ErrOwnerRequired
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.OwnerID != ownerID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders возвращает заказы владельца, новые первыми.
func (s *Service) ListOrders(ownerID string, limit int) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, domain.ErrOwnerRequired
	}
	return s.orders.ListByOwner(ownerID, limit)
}

// snapshotOrder копирует позиции и суммы корзины в неизменяемый снимок заказа.
func snapshotOrder(cart *domain.Cart, in CreateOrderInput) domain.Order {
	items := make([]domain.LineItem, len(cart.Items))
	copy(items, cart.Items)

	var coupon *domain.Coupon
	if cart.Coupon != nil {
		c := *cart.Coupon
		coupon = &c
	}

	return domain.Order{
		ID:              uuid.NewString(),
		OwnerID:         cart.OwnerID,
		Status:          domain.OrderStatusPlaced,
		Items:           items,
		SubtotalMinor:   cart.SubtotalMinor,
		TaxMinor:        cart.TaxMinor,
		ShippingMinor:   cart.ShippingMinor,
		DiscountMinor:   cart.DiscountMinor,
		TotalMinor:      cart.TotalMinor,
		Coupon:          coupon,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		CreatedAt:       time.Now().UTC(),
	}
}

// compensate удаляет заказ, оставшийся без опустошённой корзины.
func (s *Service) compensate(orderID string) {
	if err := s.orders.Delete(orderID); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).
			Error("failed to delete order during checkout compensation")
	}
}

func (s *Service) recordFailure() {
	if s.metrics != nil {
		s.metrics.RecordCheckoutFailed()
	}
}

// publishOrderEvent публикует событие создания заказа в Kafka (если producer настроен).
func (s *Service) publishOrderEvent(order *domain.Order, cartID string) {
	if s.producer == nil {
		return
	}

	event := kafka.NewOrderEvent(order.ID, order.OwnerID, order.TotalMinor, map[string]interface{}{
		"cart_id": cartID,
		"items":   len(order.Items),
	})
	if err := s.producer.PublishOrderEvent(event); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).
			Warn("failed to publish order event to kafka")
	}
}
