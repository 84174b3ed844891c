package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
)

// Config описывает настройки запуска сервиса корзины.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	Environment string

	// PostgresDSN пустой — сервис работает на in-memory хранилище.
	PostgresDSN string
	// KafkaBrokers пустой — события не публикуются.
	KafkaBrokers string

	Pricing cart.PricingConfig
}

// DefaultConfig возвращает базовые адреса и ценовые константы витрины.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		Environment: "development",
		Pricing:     cart.DefaultPricingConfig(),
	}
}

// LoadConfig читает конфигурацию из переменных окружения поверх значений по умолчанию.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("STOREFRONT_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("STOREFRONT_METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("STOREFRONT_ENV")); v != "" {
		cfg.Environment = v
	}
	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("STOREFRONT_POSTGRES_DSN"))
	cfg.KafkaBrokers = strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))

	if err := overrideInt64(&cfg.Pricing.TaxRateBps, "STOREFRONT_TAX_RATE_BPS"); err != nil {
		return Config{}, err
	}
	if err := overrideInt64(&cfg.Pricing.FreeShippingThresholdMinor, "STOREFRONT_FREE_SHIPPING_THRESHOLD_MINOR"); err != nil {
		return Config{}, err
	}
	if err := overrideInt64(&cfg.Pricing.FlatShippingFeeMinor, "STOREFRONT_FLAT_SHIPPING_FEE_MINOR"); err != nil {
		return Config{}, err
	}

	if cfg.Pricing.TaxRateBps < 0 || cfg.Pricing.FreeShippingThresholdMinor < 0 || cfg.Pricing.FlatShippingFeeMinor < 0 {
		return Config{}, fmt.Errorf("pricing values must not be negative: %+v", cfg.Pricing)
	}

	return cfg, nil
}

func overrideInt64(dst *int64, envName string) error {
	raw := strings.TrimSpace(os.Getenv(envName))
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", envName, err)
	}
	*dst = parsed
	return nil
}
