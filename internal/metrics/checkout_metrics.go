package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики для операций оформления заказа.
type CheckoutMetrics struct {
	// Счётчики жизненного цикла сессий
	checkoutStarted   prometheus.Counter
	checkoutCompleted prometheus.Counter
	checkoutAbandoned prometheus.Counter
	commitFailed      prometheus.Counter

	// Счётчики купонов и деградации доставки
	couponApplied    prometheus.Counter
	couponRejected   prometheus.Counter
	fallbackShipping prometheus.Counter

	// Гистограммы времени выполнения
	commitDuration prometheus.Histogram
	stepDuration   *prometheus.HistogramVec

	// Счётчики событий timeline
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter

	// Gauge для активных сессий
	activeSessions prometheus.Gauge
}

// NewCheckoutMetrics создаёт новый экземпляр метрик checkout.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		checkoutStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_sessions_started_total",
			Help: "Total number of checkout sessions started",
		}),
		checkoutCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_sessions_completed_total",
			Help: "Total number of checkout sessions completed with a placed order",
		}),
		checkoutAbandoned: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_sessions_abandoned_total",
			Help: "Total number of checkout sessions abandoned",
		}),
		commitFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_commit_failed_total",
			Help: "Total number of order commit attempts that failed",
		}),
		couponApplied: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_coupon_applied_total",
			Help: "Total number of coupons applied successfully",
		}),
		couponRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_coupon_rejected_total",
			Help: "Total number of coupons rejected by validation",
		}),
		fallbackShipping: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_fallback_shipping_total",
			Help: "Total number of times fallback shipping methods were served",
		}),
		commitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "checkout_commit_duration_seconds",
			Help:    "Duration of order commit operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "checkout_step_duration_seconds",
			Help:    "Duration of individual checkout operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		activeSessions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "checkout_active_sessions",
			Help: "Number of currently active checkout sessions",
		}),
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

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
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

// RecordCheckoutStarted увеличивает счётчик начатых сессий.
func (m *CheckoutMetrics) RecordCheckoutStarted() {
	if m == nil {
		return
	}
	m.checkoutStarted.Inc()
	m.activeSessions.Inc()
}

// RecordCheckoutCompleted увеличивает счётчик завершённых сессий.
func (m *CheckoutMetrics) RecordCheckoutCompleted() {
	if m == nil {
		return
	}
	m.checkoutCompleted.Inc()
	m.activeSessions.Dec()
}

// RecordCheckoutAbandoned увеличивает счётчик брошенных сессий.
func (m *CheckoutMetrics) RecordCheckoutAbandoned() {
	if m == nil {
		return
	}
	m.checkoutAbandoned.Inc()
	m.activeSessions.Dec()
}

// RecordCommitFailed увеличивает счётчик неудачных попыток оформления.
func (m *CheckoutMetrics) RecordCommitFailed() {
	if m == nil {
		return
	}
	m.commitFailed.Inc()
}

// RecordCouponApplied увеличивает счётчик применённых купонов.
func (m *CheckoutMetrics) RecordCouponApplied() {
	if m == nil {
		return
	}
	m.couponApplied.Inc()
}

// RecordCouponRejected увеличивает счётчик отклонённых купонов.
func (m *CheckoutMetrics) RecordCouponRejected() {
	if m == nil {
		return
	}
	m.couponRejected.Inc()
}

// RecordFallbackShipping увеличивает счётчик выдач fallback-методов доставки.
func (m *CheckoutMetrics) RecordFallbackShipping() {
	if m == nil {
		return
	}
	m.fallbackShipping.Inc()
}

// RecordCommitDuration записывает время оформления заказа.
func (m *CheckoutMetrics) RecordCommitDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.commitDuration.Observe(duration.Seconds())
}

// RecordStepDuration записывает время выполнения операции checkout.
func (m *CheckoutMetrics) RecordStepDuration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *CheckoutMetrics) RecordTimelineEvent() {
	if m == nil {
		return
	}
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *CheckoutMetrics) RecordOutboxEvent() {
	if m == nil {
		return
	}
	m.outboxEvents.Inc()
}
