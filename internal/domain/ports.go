package domain

// CatalogEntry — сведения о товаре или акции на момент запроса.
type CatalogEntry struct {
	ReferenceKind ReferenceKind
	ReferenceID   string
	Title         string
	// PriceMinor — действующая цена (для акции — уже со скидкой).
	PriceMinor int64
	// OriginalPriceMinor — цена до скидки.
	OriginalPriceMinor int64
	Stock              int32
	ImageURL           string
}

// CatalogService описывает взаимодействие с каталогом товаров и акций.
// Движок корзины сам каталог не опрашивает: цены ему передаёт вызывающий слой.
type CatalogService interface {
	// Lookup возвращает сведения о сущности или ErrUnknownReference.
	Lookup(kind ReferenceKind, id string) (CatalogEntry, error)
}

// CouponRegistry описывает реестр купонов.
type CouponRegistry interface {
	// Resolve возвращает правило купона по коду или ErrInvalidCoupon.
	Resolve(code string) (Coupon, error)
}
