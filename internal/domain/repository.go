package domain

// CartRepository описывает требования к хранилищу корзин.
type CartRepository interface {
	// GetActive возвращает активную корзину владельца или ErrCartNotFound.
	GetActive(ownerID string) (Cart, error)
	// Create сохраняет новую корзину. Возвращает ErrActiveCartExists,
	// если у владельца уже есть активная корзина.
	Create(cart Cart) error
	// Save перезаписывает корзину с учётом optimistic locking по полю Version.
	// Возвращает ErrCartNotFound или ErrCartVersionConflict.
	Save(cart Cart) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет снимок заказа. Возвращает ErrOrderExists при повторе ID.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByOwner возвращает заказы покупателя с опциональным ограничением на количество.
	ListByOwner(ownerID string, limit int) ([]Order, error)
	// Delete удаляет заказ. Используется как компенсация, если после создания
	// заказа не удалось очистить исходную корзину.
	Delete(id string) error
}
