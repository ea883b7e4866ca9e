package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts checkout attempts and per-line fulfillment outcomes.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	lines    *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "attempts_total",
		Help:      "Checkout attempts by result (ticket, partial, none, empty).",
	}, []string{"result"})
	lines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "lines_total",
		Help:      "Cart lines processed by checkout, by status and reason.",
	}, []string{"status", "reason"})

	reg.MustRegister(attempts, lines)
	return &CheckoutMetrics{attempts: attempts, lines: lines}
}

func (m *CheckoutMetrics) Attempt(result string) {
	m.attempts.WithLabelValues(result).Inc()
}

func (m *CheckoutMetrics) Line(status, reason string) {
	m.lines.WithLabelValues(status, reason).Inc()
}
