package domain

import "errors"

var (
	// Ошибка отсутствующего владельца корзины.
	ErrOwnerRequired = errors.New("owner_id is required")
	// Ошибка ссылки позиции: вид должен быть product или deal, идентификатор — непустым.
	ErrItemReferenceInvalid = errors.New("line item must reference exactly one product or deal")
	// Ошибка количества: допустимы только значения >= 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// Ошибка отрицательной цены позиции.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка дубликата строки: две позиции с одинаковой идентичностью недопустимы.
	ErrDuplicateLine = errors.New("duplicate line item for the same reference and variant")
	// Ошибка несоответствия производных сумм и позиций корзины.
	ErrTotalsMismatch = errors.New("cart totals do not match items")
	// Ошибка отрицательного итога корзины.
	ErrTotalNegative = errors.New("cart total must not be negative")
	// ErrItemNotFound возвращается при операции над отсутствующей позицией.
	ErrItemNotFound = errors.New("line item not found in cart")
	// ErrInvalidCoupon возвращается для неизвестного или некорректного кода купона.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrEmptyCart возвращается при попытке оформить заказ из пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCartNotFound возвращается, если активная корзина не найдена в репозитории.
	ErrCartNotFound = errors.New("cart not found")
	// ErrActiveCartExists сигнализирует о нарушении инварианта "одна активная корзина на пользователя".
	ErrActiveCartExists = errors.New("active cart already exists for owner")
	// ErrCartVersionConflict сигнализирует о проигранной гонке при сохранении корзины.
	ErrCartVersionConflict = errors.New("cart version conflict")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists возвращается при повторной вставке заказа с тем же ID.
	ErrOrderExists = errors.New("order already exists")
	// ErrShippingAddressRequired — при оформлении заказа нужен адрес доставки.
	ErrShippingAddressRequired = errors.New("shipping address is required")
	// ErrPaymentMethodRequired — при оформлении заказа нужен способ оплаты.
	ErrPaymentMethodRequired = errors.New("payment method is required")
	// ErrUnknownReference — каталог не знает такой товар или акцию.
	ErrUnknownReference = errors.New("unknown catalog reference")
	// ErrInsufficientStock — запрошенное количество превышает доступный остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий корзины.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrCartVersionConflict)
}
