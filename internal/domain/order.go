package domain

import "time"

// OrderStatus описывает состояние заказа после оформления.
type OrderStatus string

const (
	// OrderStatusPlaced — заказ создан из корзины и ждёт исполнения.
	OrderStatusPlaced OrderStatus = "placed"
	// OrderStatusCanceled — заказ отменён до исполнения.
	OrderStatusCanceled OrderStatus = "canceled"
)

// ShippingAddress — адрес доставки, который покупатель передаёт при оформлении.
type ShippingAddress struct {
	Line1      string
	City       string
	Region     string
	PostalCode string
	Country    string
}

// Order — неизменяемый снимок корзины на момент оформления.
// Позиции и суммы копируются из корзины и больше никогда не пересчитываются.
type Order struct {
	ID      string
	OwnerID string
	Status  OrderStatus

	Items []LineItem

	SubtotalMinor int64
	TaxMinor      int64
	ShippingMinor int64
	DiscountMinor int64
	TotalMinor    int64

	Coupon *Coupon

	ShippingAddress ShippingAddress
	PaymentMethod   string

	CreatedAt time.Time
}

// ValidateInvariants проверяет согласованность снимка заказа.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.OwnerID == "" {
		errs = append(errs, ErrOwnerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrEmptyCart)
	}
	if o.ShippingAddress.Line1 == "" || o.ShippingAddress.City == "" {
		errs = append(errs, ErrShippingAddressRequired)
	}
	if o.PaymentMethod == "" {
		errs = append(errs, ErrPaymentMethodRequired)
	}

	var subtotal int64
	for _, item := range o.Items {
		if item.Qty < 1 {
			errs = append(errs, ErrInvalidQuantity)
		}
		if item.UnitPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		subtotal += int64(item.Qty) * item.UnitPriceMinor
	}
	if subtotal != o.SubtotalMinor {
		errs = append(errs, ErrTotalsMismatch)
	}
	if o.TotalMinor != o.SubtotalMinor+o.TaxMinor+o.ShippingMinor-o.DiscountMinor {
		errs = append(errs, ErrTotalsMismatch)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	return errs
}
