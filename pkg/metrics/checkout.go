package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout stages used as the "stage" label on failures.
const (
	StageValidation = "validation"
	StageConfig     = "payment_config"
	StageCart       = "cart"
	StageOrder      = "order_create"
	StagePending    = "pending_store"
)

// CheckoutMetrics records order submission outcomes.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	success  prometheus.Counter
	failure  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_payment_handoffs_total",
		Help: "Checkouts that reached the hosted payment redirect.",
	})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout submissions aborted, by stage.",
	}, []string{"stage"})
	reg.MustRegister(duration, success, failure)
	return &CheckoutMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records how long a submission took.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncHandoff counts a submission that produced a payment form.
func (c *CheckoutMetrics) IncHandoff() {
	if c == nil || c.success == nil {
		return
	}
	c.success.Inc()
}

// IncFailure counts a submission aborted at stage.
func (c *CheckoutMetrics) IncFailure(stage string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(stage)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
