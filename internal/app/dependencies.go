package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/coupon"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// Dependencies содержит все зависимости сервиса корзины.
type Dependencies struct {
	Carts   domain.CartRepository
	Orders  domain.OrderRepository
	Catalog domain.CatalogService
	Coupons domain.CouponRegistry
	Logger  *log.Entry

	store *postgres.Store
}

// NewDependencies создаёт хранилища и сервисные зависимости.
// С пустым DSN сервис работает на in-memory хранилище (разработка и демо);
// с заданным DSN подключается PostgreSQL и применяются миграции.
// NOTE: каталог — mock с демонстрационным ассортиментом; в production
// окружении заменяется клиентом реального каталога.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Catalog: catalog.NewMockService(),
		Coupons: coupon.NewStaticRegistry(coupon.DefaultRules()),
		Logger:  logger,
	}

	if cfg.PostgresDSN == "" {
		deps.Carts = memory.NewCartRepository()
		deps.Orders = memory.NewOrderRepository()
		logger.Info("using in-memory storage")
		return deps, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	deps.store = store
	deps.Carts = postgres.NewCartRepository(store)
	deps.Orders = postgres.NewOrderRepository(store)
	logger.Info("using postgres storage")

	return deps, nil
}

// Store возвращает подключение к PostgreSQL (nil для in-memory режима).
func (d *Dependencies) Store() *postgres.Store {
	return d.store
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
