package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks the checkout pipeline: step outcomes, transition
// latency, and delivery attempts per channel.
type CheckoutMetrics struct {
	steps       *prometheus.CounterVec
	transitions *prometheus.HistogramVec
	deliveries  *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_steps_total",
		Help: "Checkout side effects by step and outcome.",
	}, []string{"step", "outcome"})
	transitions := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_checkout_transition_seconds",
		Help:    "Time spent in each checkout transition.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_invoice_deliveries_total",
		Help: "Invoice delivery attempts by channel and result.",
	}, []string{"channel", "result"})
	reg.MustRegister(steps, transitions, deliveries)
	return &CheckoutMetrics{steps: steps, transitions: transitions, deliveries: deliveries}
}

func (c *CheckoutMetrics) IncStep(step, outcome string) {
	if c == nil || c.steps == nil {
		return
	}
	c.steps.WithLabelValues(normalizeLabel(step), normalizeLabel(outcome)).Inc()
}

func (c *CheckoutMetrics) ObserveTransition(stage string, d time.Duration) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(stage)).Observe(d.Seconds())
}

func (c *CheckoutMetrics) IncDelivery(channel string, delivered bool) {
	if c == nil || c.deliveries == nil {
		return
	}
	result := "failed"
	if delivered {
		result = "delivered"
	}
	c.deliveries.WithLabelValues(normalizeLabel(channel), result).Inc()
}
