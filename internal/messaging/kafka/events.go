package kafka

import "time"

// EventType определяет тип публикуемого события.
type EventType string

const (
	// События корзины
	EventTypeCartItemAdded     EventType = "cart.item_added"
	EventTypeCartItemUpdated   EventType = "cart.item_updated"
	EventTypeCartItemRemoved   EventType = "cart.item_removed"
	EventTypeCartCleared       EventType = "cart.cleared"
	EventTypeCartCouponApplied EventType = "cart.coupon_applied"
	EventTypeCartCouponRemoved EventType = "cart.coupon_removed"

	// События заказов
	EventTypeOrderCreated EventType = "order.created"
)

// Topics для Kafka
const (
	TopicCartEvents  = "storefront.cart.events"
	TopicOrderEvents = "storefront.order.events"
)

// CartEvent описывает изменение корзины.
type CartEvent struct {
	EventType  EventType              `json:"event_type"`
	CartID     string                 `json:"cart_id"`
	OwnerID    string                 `json:"owner_id"`
	TotalMinor int64                  `json:"total_minor"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// OrderEvent описывает создание заказа из корзины.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	OwnerID    string                 `json:"owner_id"`
	TotalMinor int64                  `json:"total_minor"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewCartEvent создаёт событие изменения корзины.
func NewCartEvent(eventType EventType, cartID, ownerID string, totalMinor int64, metadata map[string]interface{}) *CartEvent {
	return &CartEvent{
		EventType:  eventType,
		CartID:     cartID,
		OwnerID:    ownerID,
		TotalMinor: totalMinor,
		Timestamp:  time.Now().UTC(),
		Metadata:   metadata,
	}
}

// NewOrderEvent создаёт событие создания заказа.
func NewOrderEvent(orderID, ownerID string, totalMinor int64, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  EventTypeOrderCreated,
		OrderID:    orderID,
		OwnerID:    ownerID,
		TotalMinor: totalMinor,
		Timestamp:  time.Now().UTC(),
		Metadata:   metadata,
	}
}
