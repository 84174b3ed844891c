package catalog

import (
	"fmt"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// MockService — конфигурируемая заглушка CatalogService для разработки и тестов.
// NOTE: в production окружении заменяется клиентом реального каталога.
type MockService struct {
	mu      sync.RWMutex
	entries map[string]domain.CatalogEntry

	LookupErr   error
	LookupCalls int
}

// NewMockService возвращает каталог с небольшим демонстрационным ассортиментом.
func NewMockService() *MockService {
	svc := &MockService{entries: make(map[string]domain.CatalogEntry)}
	for _, entry := range []domain.CatalogEntry{
		{ReferenceKind: domain.ReferenceKindProduct, ReferenceID: "P1", Title: "Canvas tote", PriceMinor: 2500, OriginalPriceMinor: 2500, Stock: 120, ImageURL: "https://cdn.example.com/p1.jpg"},
		{ReferenceKind: domain.ReferenceKindProduct, ReferenceID: "P2", Title: "Wool beanie", PriceMinor: 1800, OriginalPriceMinor: 1800, Stock: 40, ImageURL: "https://cdn.example.com/p2.jpg"},
		{ReferenceKind: domain.ReferenceKindProduct, ReferenceID: "P3", Title: "Desk lamp", PriceMinor: 6200, OriginalPriceMinor: 6200, Stock: 15, ImageURL: "https://cdn.example.com/p3.jpg"},
		{ReferenceKind: domain.ReferenceKindDeal, ReferenceID: "D1", Title: "Beanie bundle", PriceMinor: 1500, OriginalPriceMinor: 2200, Stock: 25, ImageURL: "https://cdn.example.com/d1.jpg"},
	} {
		svc.entries[entryKey(entry.ReferenceKind, entry.ReferenceID)] = entry
	}
	return svc
}

// Lookup возвращает сведения о товаре или акции либо ErrUnknownReference.
func (m *MockService) Lookup(kind domain.ReferenceKind, id string) (domain.CatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LookupCalls++
	if m.LookupErr != nil {
		return domain.CatalogEntry{}, m.LookupErr
	}

	entry, ok := m.entries[entryKey(kind, id)]
	if !ok {
		return domain.CatalogEntry{}, domain.ErrUnknownReference
	}
	return entry, nil
}

// SetEntry добавляет или замещает позицию каталога (для тестов).
func (m *MockService) SetEntry(entry domain.CatalogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entryKey(entry.ReferenceKind, entry.ReferenceID)] = entry
}

func entryKey(kind domain.ReferenceKind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

var _ domain.CatalogService = (*MockService)(nil)
