package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics содержит метрики операций корзины и оформления заказов.
type CartMetrics struct {
	// Счётчики мутаций корзины с меткой операции.
	cartOps      *prometheus.CounterVec
	cartOpErrors *prometheus.CounterVec

	// Конфликты версий при сохранении корзины.
	versionConflicts prometheus.Counter

	// Применённые купоны.
	couponsApplied prometheus.Counter

	// Оформления заказов.
	checkoutsCompleted prometheus.Counter
	checkoutsFailed    prometheus.Counter

	// Гистограмма времени выполнения операций.
	opDuration *prometheus.HistogramVec
}

// NewCartMetrics создаёт метрики корзины в default-регистраторе Prometheus.
func NewCartMetrics() *CartMetrics {
	return newCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		cartOps: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_ops_total",
			Help: "Total number of cart mutations by operation",
		}, []string{"op"}),
		cartOpErrors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_op_errors_total",
			Help: "Total number of failed cart mutations by operation",
		}, []string{"op"}),
		versionConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_version_conflicts_total",
			Help: "Total number of optimistic lock conflicts while saving carts",
		}),
		couponsApplied: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_coupons_applied_total",
			Help: "Total number of coupons applied to carts",
		}),
		checkoutsCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkouts_completed_total",
			Help: "Total number of orders successfully created from carts",
		}),
		checkoutsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkouts_failed_total",
			Help: "Total number of failed checkout attempts",
		}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_cart_op_duration_seconds",
			Help:    "Duration of cart operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"op"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCartOp увеличивает счётчик выполненных мутаций корзины.
func (m *CartMetrics) RecordCartOp(op string) {
	m.cartOps.WithLabelValues(op).Inc()
}

// RecordCartOpError увеличивает счётчик неудачных мутаций корзины.
func (m *CartMetrics) RecordCartOpError(op string) {
	m.cartOpErrors.WithLabelValues(op).Inc()
}

// RecordVersionConflict увеличивает счётчик конфликтов optimistic locking.
func (m *CartMetrics) RecordVersionConflict() {
	m.versionConflicts.Inc()
}

// RecordCouponApplied увеличивает счётчик применённых купонов.
func (m *CartMetrics) RecordCouponApplied() {
	m.couponsApplied.Inc()
}

// RecordCheckoutCompleted увеличивает счётчик успешных оформлений.
func (m *CartMetrics) RecordCheckoutCompleted() {
	m.checkoutsCompleted.Inc()
}

// RecordCheckoutFailed увеличивает счётчик неудачных оформлений.
func (m *CartMetrics) RecordCheckoutFailed() {
	m.checkoutsFailed.Inc()
}

// RecordOpDuration записывает время выполнения операции корзины.
func (m *CartMetrics) RecordOpDuration(op string, duration time.Duration) {
	m.opDuration.WithLabelValues(op).Observe(duration.Seconds())
}
