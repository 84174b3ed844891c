package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Имена операций для метрик и логов.
const (
	opAddItem        = "add_item"
	opUpdateQuantity = "update_quantity"
	opRemoveItem     = "remove_item"
	opClear          = "clear"
	opApplyCoupon    = "apply_coupon"
	opRemoveCoupon   = "remove_coupon"
)

const (
	saveMaxRetries = 3
	saveBaseDelay  = 10 * time.Millisecond
)

// errMutationNoop сигнализирует, что мутация ничего не изменила и сохранять нечего.
var errMutationNoop = errors.New("cart mutation is a no-op")

// NewItem — входные данные для добавления позиции. Цены передаёт вызывающий
// слой по свежему чтению каталога: движок каталог не опрашивает и переданным
// ценам доверяет.
type NewItem struct {
	ReferenceKind          domain.ReferenceKind
	ReferenceID            string
	Qty                    int32
	SelectedColor          string
	SelectedSize           string
	UnitPriceMinor         int64
	UnitOriginalPriceMinor int64
}

func (n NewItem) validate() error {
	if !n.ReferenceKind.Valid() || n.ReferenceID == "" {
		return domain.ErrItemReferenceInvalid
	}
	if n.Qty < 1 {
		return domain.ErrInvalidQuantity
	}
	if n.UnitPriceMinor < 0 || n.UnitOriginalPriceMinor < 0 {
		return domain.ErrItemPriceInvalid
	}
	return nil
}

// Engine реализует движок корзины: мутации позиций, купоны и пересчёт сумм.
// Каждая мутация выполняется как атомарный read-modify-write поверх
// optimistic locking репозитория; проигранная гонка прозрачно повторяется.
type Engine struct {
	carts    domain.CartRepository
	coupons  domain.CouponRegistry
	pricing  PricingConfig
	logger   *log.Entry
	metrics  *metrics.CartMetrics
	producer *kafka.Producer
}

// NewEngine создаёт рабочий экземпляр движка корзины.
func NewEngine(
	carts domain.CartRepository,
	coupons domain.CouponRegistry,
	pricing PricingConfig,
	logger *log.Entry,
) *Engine {
	if logger == nil {
		logger = log.New().WithField("component", "cart-engine")
	}
	return &Engine{
		carts:   carts,
		coupons: coupons,
		pricing: pricing,
		logger:  logger,
		metrics: metrics.NewCartMetrics(),
	}
}

// NewEngineWithKafka создаёт движок, публикующий события корзины в Kafka.
func NewEngineWithKafka(
	carts domain.CartRepository,
	coupons domain.CouponRegistry,
	pricing PricingConfig,
	producer *kafka.Producer,
	logger *log.Entry,
) *Engine {
	engine := NewEngine(carts, coupons, pricing, logger)
	engine.producer = producer
	return engine
}

// NewEngineWithoutMetrics создаёт движок без метрик (для тестов).
func NewEngineWithoutMetrics(
	carts domain.CartRepository,
	coupons domain.CouponRegistry,
	pricing PricingConfig,
	logger *log.Entry,
) *Engine {
	if logger == nil {
		logger = log.New().WithField("component", "cart-engine")
	}
	return &Engine{
		carts:   carts,
		coupons: coupons,
		pricing: pricing,
		logger:  logger,
	}
}

// Pricing возвращает действующую конфигурацию расчёта сумм.
func (e *Engine) Pricing() PricingConfig {
	return e.pricing
}

// GetOrCreate возвращает единственную активную корзину владельца,
// лениво создавая пустую, если её ещё нет.
func (e *Engine) GetOrCreate(ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, domain.ErrOwnerRequired
	}

	cart, err := e.carts.GetActive(ownerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{}, err
	}

	now := time.Now().UTC()
	fresh := domain.Cart{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		IsActive:  true,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.carts.Create(fresh); err != nil {
		// Параллельный запрос успел создать корзину первым — читаем её.
		if errors.Is(err, domain.ErrActiveCartExists) {
			return e.carts.GetActive(ownerID)
		}
		return domain.Cart{}, err
	}

	e.logger.WithFields(log.Fields{
		"cart_id":  fresh.ID,
		"owner_id": ownerID,
	}).Debug("created empty active cart")

	return fresh, nil
}

// AddItem добавляет позицию в корзину владельца, сливая количество с уже
// существующей строкой той же идентичности. Цены существующей строки при
// слиянии не трогаются: цена фиксируется в момент первого добавления.
func (e *Engine) AddItem(ownerID string, item NewItem) (domain.Cart, error) {
	if err := item.validate(); err != nil {
		if e.metrics != nil {
			e.metrics.RecordCartOpError(opAddItem)
		}
		return domain.Cart{}, err
	}

	// Ленивое создание корзины при первом добавлении.
	if _, err := e.GetOrCreate(ownerID); err != nil {
		return domain.Cart{}, err
	}

	cart, err := e.mutate(opAddItem, ownerID, func(c *domain.Cart) error {
		if idx, ok := c.FindLine(domain.LineItem{
			ReferenceKind: item.ReferenceKind,
			ReferenceID:   item.ReferenceID,
			SelectedColor: item.SelectedColor,
			SelectedSize:  item.SelectedSize,
		}); ok {
			c.Items[idx].Qty += item.Qty
			return nil
		}
		c.Items = append(c.Items, domain.LineItem{
			ID:                     uuid.NewString(),
			ReferenceKind:          item.ReferenceKind,
			ReferenceID:            item.ReferenceID,
			Qty:                    item.Qty,
			SelectedColor:          item.SelectedColor,
			SelectedSize:           item.SelectedSize,
			UnitPriceMinor:         item.UnitPriceMinor,
			UnitOriginalPriceMinor: item.UnitOriginalPriceMinor,
			CreatedAt:              time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	e.publishCartEvent(kafka.EventTypeCartItemAdded, &cart, map[string]interface{}{
		"reference_kind": string(item.ReferenceKind),
		"reference_id":   item.ReferenceID,
		"qty":            item.Qty,
	})
	return cart, nil
}

// UpdateQuantity выставляет количество существующей позиции.
// Количество меньше единицы отклоняется: удаление — отдельная явная операция.
func (e *Engine) UpdateQuantity(ownerID, itemID string, qty int32) (domain.Cart, error) {
	if qty < 1 {
		if e.metrics != nil {
			e.metrics.RecordCartOpError(opUpdateQuantity)
		}
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	cart, err := e.mutate(opUpdateQuantity, ownerID, func(c *domain.Cart) error {
		idx, ok := c.FindItem(itemID)
		if !ok {
			return domain.ErrItemNotFound
		}
		c.Items[idx].Qty = qty
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	e.publishCartEvent(kafka.EventTypeCartItemUpdated, &cart, map[string]interface{}{
		"item_id": itemID,
		"qty":     qty,
	})
	return cart, nil
}

// RemoveItem удаляет позицию по идентификатору. Операция идемпотентна:
// удаление отсутствующей позиции — no-op, а не ошибка.
func (e *Engine) RemoveItem(ownerID, itemID string) (domain.Cart, error) {
	cart, err := e.mutate(opRemoveItem, ownerID, func(c *domain.Cart) error {
		idx, ok := c.FindItem(itemID)
		if !ok {
			return errMutationNoop
		}
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	e.publishCartEvent(kafka.EventTypeCartItemRemoved, &cart, map[string]interface{}{
		"item_id": itemID,
	})
	return cart, nil
}

// Clear опустошает корзину: позиции и купон снимаются, суммы обнуляются.
func (e *Engine) Clear(ownerID string) (domain.Cart, error) {
	cart, err := e.mutate(opClear, ownerID, func(c *domain.Cart) error {
		if c.IsEmpty() && c.Coupon == nil {
			return errMutationNoop
		}
		c.Items = nil
		c.Coupon = nil
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	e.publishCartEvent(kafka.EventTypeCartCleared, &cart, nil)
	return cart, nil
}

// ApplyCoupon применяет купон к корзине. Новый купон замещает предыдущий:
// купоны не складываются.
func (e *Engine) ApplyCoupon(ownerID, code string) (domain.Cart, error) {
	coupon, err := e.coupons.Resolve(code)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordCartOpError(opApplyCoupon)
		}
		return domain.Cart{}, err
	}

	cart, err := e.mutate(opApplyCoupon, ownerID, func(c *domain.Cart) error {
		c.Coupon = &coupon
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	if e.metrics != nil {
		e.metrics.RecordCouponApplied()
	}
	e.publishCartEvent(kafka.EventTypeCartCouponApplied, &cart, map[string]interface{}{
		"code": coupon.Code,
		"kind": string(coupon.Kind),
	})
	return cart, nil
}

// RemoveCoupon снимает купон с корзины. Без купона операция — no-op.
func (e *Engine) RemoveCoupon(ownerID string) (domain.Cart, error) {
	cart, err := e.mutate(opRemoveCoupon, ownerID, func(c *domain.Cart) error {
		if c.Coupon == nil {
			return errMutationNoop
		}
		c.Coupon = nil
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	e.publishCartEvent(kafka.EventTypeCartCouponRemoved, &cart, nil)
	return cart, nil
}

// mutate выполняет мутацию активной корзины как атомарный read-modify-write.
// При конфликте версий корзина перечитывается и мутация применяется заново
// с exponential backoff; после исчерпания попыток возвращается конфликт.
func (e *Engine) mutate(op, ownerID string, fn func(c *domain.Cart) error) (domain.Cart, error) {
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.RecordOpDuration(op, time.Since(start))
		}
	}()

	if ownerID == "" {
		return domain.Cart{}, domain.ErrOwnerRequired
	}

	for attempt := 0; attempt < saveMaxRetries; attempt++ {
		cart, err := e.carts.GetActive(ownerID)
		if err != nil {
			if e.metrics != nil {
				e.metrics.RecordCartOpError(op)
			}
			return domain.Cart{}, err
		}

		if err := fn(&cart); err != nil {
			if errors.Is(err, errMutationNoop) {
				// Сохранять нечего, возвращаем корзину как есть.
				return cart, nil
			}
			if e.metrics != nil {
				e.metrics.RecordCartOpError(op)
			}
			return domain.Cart{}, err
		}

		applyTotals(&cart, ComputeTotals(cart.Items, cart.Coupon, e.pricing))
		cart.UpdatedAt = time.Now().UTC()

		if errs := cart.ValidateInvariants(); len(errs) > 0 {
			if e.metrics != nil {
				e.metrics.RecordCartOpError(op)
			}
			return domain.Cart{}, errors.Join(errs...)
		}

		if err := e.carts.Save(cart); err != nil {
			if domain.IsVersionConflict(err) && attempt < saveMaxRetries-1 {
				if e.metrics != nil {
					e.metrics.RecordVersionConflict()
				}
				e.logger.WithFields(log.Fields{
					"op":       op,
					"owner_id": ownerID,
					"attempt":  attempt + 1,
				}).Warn("cart version conflict, retrying")
				time.Sleep(saveBaseDelay * time.Duration(1<<uint(attempt)))
				continue
			}
			if e.metrics != nil {
				e.metrics.RecordCartOpError(op)
			}
			return domain.Cart{}, err
		}

		cart.Version++
		if e.metrics != nil {
			e.metrics.RecordCartOp(op)
		}
		return cart, nil
	}

	if e.metrics != nil {
		e.metrics.RecordCartOpError(op)
	}
	return domain.Cart{}, domain.ErrCartVersionConflict
}

// publishCartEvent публикует событие корзины в Kafka (если producer настроен).
func (e *Engine) publishCartEvent(eventType kafka.EventType, cart *domain.Cart, metadata map[string]interface{}) {
	if e.producer == nil {
		return
	}

	event := kafka.NewCartEvent(eventType, cart.ID, cart.OwnerID, cart.TotalMinor, metadata)
	if err := e.producer.PublishCartEvent(event); err != nil {
		// Kafka опциональна: ошибку логируем, мутацию не откатываем.
		e.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"cart_id":    cart.ID,
		}).Warn("failed to publish cart event to kafka")
	}
}
