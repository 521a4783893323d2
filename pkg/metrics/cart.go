package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ezshop"

// CartMetrics tracks cart operation outcomes and checkout value.
type CartMetrics struct {
	operations *prometheus.CounterVec
	checkout   prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart operations by name and outcome.",
	}, []string{"operation", "outcome"})
	checkout := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_total_cents",
		Help:      "Total value of paid carts in cents.",
		Buckets:   prometheus.ExponentialBuckets(1000, 4, 8),
	})
	reg.MustRegister(operations, checkout)
	return &CartMetrics{
		operations: operations,
		checkout:   checkout,
	}
}

// IncOperation counts one cart operation. An empty outcome is recorded as "ok".
func (c *CartMetrics) IncOperation(operation, outcome string) {
	if c == nil || c.operations == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	c.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// ObserveCheckout records the value of a paid cart.
func (c *CartMetrics) ObserveCheckout(totalCents int64) {
	if c == nil || c.checkout == nil {
		return
	}
	c.checkout.Observe(float64(totalCents))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
