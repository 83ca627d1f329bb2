package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement outcomes.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	placed   *prometheus.CounterVec
	rejected *prometheus.CounterVec
	retries  prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of order placement attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_placed",
		Help: "Orders committed successfully.",
	}, []string{"payment"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_rejected",
		Help: "Order placements rejected during validation.",
	}, []string{"reason"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_tx_retries",
		Help: "Transaction retries during order placement.",
	})
	reg.MustRegister(duration, placed, rejected, retries)
	return &CheckoutMetrics{
		duration: duration,
		placed:   placed,
		rejected: rejected,
		retries:  retries,
	}
}

// ObserveDuration records the duration of a placement attempt by outcome.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncPlaced increments the placed counter for the payment method.
func (c *CheckoutMetrics) IncPlaced(payment string) {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.WithLabelValues(normalizeLabel(payment)).Inc()
}

// IncRejected increments the rejection counter for the named reason.
func (c *CheckoutMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncRetry increments the transaction retry counter.
func (c *CheckoutMetrics) IncRetry() {
	if c == nil || c.retries == nil {
		return
	}
	c.retries.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
