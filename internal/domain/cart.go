package domain

import "time"

// ReferenceKind указывает, на какую каталожную сущность ссылается позиция корзины.
type ReferenceKind string

const (
	// ReferenceKindProduct — позиция ссылается на обычный товар каталога.
	ReferenceKindProduct ReferenceKind = "product"
	// ReferenceKindDeal — позиция ссылается на акционное предложение со скидочной ценой.
	ReferenceKindDeal ReferenceKind = "deal"
)

// Valid проверяет, что вид ссылки известен.
func (k ReferenceKind) Valid() bool {
	return k == ReferenceKindProduct || k == ReferenceKindDeal
}

// CouponKind задаёт способ расчёта скидки купона.
type CouponKind string

const (
	// CouponKindPercentage — скидка как процент от подытога.
	CouponKindPercentage CouponKind = "percentage"
	// CouponKindFixed — фиксированная скидка в минимальных денежных единицах.
	CouponKindFixed CouponKind = "fixed"
)

// Coupon описывает применённый к корзине купон.
// Для percentage Value — процент (10 означает 10%), для fixed — сумма в минорных единицах.
type Coupon struct {
	Code  string
	Kind  CouponKind
	Value int64
}

// LineItem представляет одну позицию корзины: количество одного варианта товара или акции.
type LineItem struct {
	// ID позиции нужен для адресации при изменении количества и удалении.
	ID string
	// ReferenceKind и ReferenceID вместе указывают ровно на одну каталожную сущность.
	ReferenceKind ReferenceKind
	ReferenceID   string
	// Qty — количество единиц, всегда >= 1.
	Qty int32
	// SelectedColor и SelectedSize — опциональные варианты, участвуют в идентичности строки.
	SelectedColor string
	SelectedSize  string
	// UnitPriceMinor — действующая цена, зафиксированная в момент добавления.
	UnitPriceMinor int64
	// UnitOriginalPriceMinor — цена до скидки, зафиксированная в момент добавления.
	UnitOriginalPriceMinor int64
	// CreatedAt фиксирует момент появления позиции в корзине.
	CreatedAt time.Time
}

// SameLine отвечает, описывают ли две позиции одну и ту же строку корзины.
// Идентичность строки — (ReferenceKind, ReferenceID, SelectedColor, SelectedSize).
func (i LineItem) SameLine(other LineItem) bool {
	return i.ReferenceKind == other.ReferenceKind &&
		i.ReferenceID == other.ReferenceID &&
		i.SelectedColor == other.SelectedColor &&
		i.SelectedSize == other.SelectedSize
}

// Cart агрегирует позиции покупателя и производные денежные поля.
// Производные поля (Subtotal..Total) никогда не выставляются вызывающим кодом напрямую —
// их пересчитывает движок корзины после каждой мутации.
type Cart struct {
	ID      string
	OwnerID string
	Items   []LineItem

	SubtotalMinor int64
	TaxMinor      int64
	ShippingMinor int64
	DiscountMinor int64
	TotalMinor    int64

	Coupon *Coupon

	// IsActive: у пользователя не больше одной активной корзины одновременно.
	IsActive  bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindItem возвращает индекс позиции по её ID.
func (c *Cart) FindItem(itemID string) (int, bool) {
	for idx, item := range c.Items {
		if item.ID == itemID {
			return idx, true
		}
	}
	return -1, false
}

// FindLine возвращает индекс позиции, совпадающей по идентичности строки.
func (c *Cart) FindLine(probe LineItem) (int, bool) {
	for idx, item := range c.Items {
		if item.SameLine(probe) {
			return idx, true
		}
	}
	return -1, false
}

// IsEmpty отвечает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone возвращает глубокую копию корзины, чтобы мутации снаружи не задели хранимое состояние.
func (c Cart) Clone() Cart {
	clone := c
	if c.Items != nil {
		clone.Items = make([]LineItem, len(c.Items))
		copy(clone.Items, c.Items)
	}
	if c.Coupon != nil {
		coupon := *c.Coupon
		clone.Coupon = &coupon
	}
	return clone
}

// ValidateInvariants проверяет инварианты корзины и возвращает список замечаний.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	if c.OwnerID == "" {
		errs = append(errs, ErrOwnerRequired)
	}

	var subtotal int64
	for i, item := range c.Items {
		if !item.ReferenceKind.Valid() || item.ReferenceID == "" {
			errs = append(errs, ErrItemReferenceInvalid)
		}
		if item.Qty < 1 {
			errs = append(errs, ErrInvalidQuantity)
		}
		if item.UnitPriceMinor < 0 || item.UnitOriginalPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		// Две позиции не могут совпадать по идентичности строки.
		for _, earlier := range c.Items[:i] {
			if earlier.SameLine(item) {
				errs = append(errs, ErrDuplicateLine)
				break
			}
		}
		subtotal += int64(item.Qty) * item.UnitPriceMinor
	}

	if subtotal != c.SubtotalMinor {
		errs = append(errs, ErrTotalsMismatch)
	}
	if c.TotalMinor != c.SubtotalMinor+c.TaxMinor+c.ShippingMinor-c.DiscountMinor {
		errs = append(errs, ErrTotalsMismatch)
	}
	if c.TotalMinor < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	if c.Coupon != nil {
		if c.Coupon.Code == "" || (c.Coupon.Kind != CouponKindPercentage && c.Coupon.Kind != CouponKindFixed) {
			errs = append(errs, ErrInvalidCoupon)
		}
	}

	return errs
}
