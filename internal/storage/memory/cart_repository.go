package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartRepositoryInMemory — in-memory реализация CartRepository для локальной
// разработки и тестов. Хранит корзины по ID и индекс активной корзины владельца.
type cartRepositoryInMemory struct {
	mu     sync.RWMutex
	items  map[string]domain.Cart
	active map[string]string // owner_id -> cart_id активной корзины
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		items:  make(map[string]domain.Cart),
		active: make(map[string]string),
	}
}

// GetActive возвращает активную корзину владельца или ErrCartNotFound.
func (r *cartRepositoryInMemory) GetActive(ownerID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cartID, ok := r.active[ownerID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	cart, ok := r.items[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	// Возвращаем копию, чтобы мутации снаружи не задели хранимое состояние.
	return cart.Clone(), nil
}

// Create сохраняет новую корзину, охраняя инвариант единственной активной
// корзины владельца.
func (r *cartRepositoryInMemory) Create(cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[cart.ID]; exists {
		return domain.ErrCartVersionConflict
	}
	if cart.IsActive {
		if _, exists := r.active[cart.OwnerID]; exists {
			return domain.ErrActiveCartExists
		}
		r.active[cart.OwnerID] = cart.ID
	}
	r.items[cart.ID] = cart.Clone()
	return nil
}

// Save перезаписывает корзину, проверяя версию (optimistic locking).
func (r *cartRepositoryInMemory) Save(cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[cart.ID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if current.Version != cart.Version {
		return domain.ErrCartVersionConflict
	}

	// Инкрементируем версию перед сохранением.
	stored := cart.Clone()
	stored.Version++
	r.items[cart.ID] = stored

	// Деактивированная корзина выпадает из индекса активных.
	if current.IsActive && !cart.IsActive {
		delete(r.active, cart.OwnerID)
	}
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
