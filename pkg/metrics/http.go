package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level timings plus domain counters for the
// cart and checkout flows.
type HTTPMetrics struct {
	duration      *prometheus.HistogramVec
	cartMutations *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
}

// NewHTTPMetrics registers the API metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"operation", "outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, cartMutations, checkouts)
	return &HTTPMetrics{
		duration:      duration,
		cartMutations: cartMutations,
		checkouts:     checkouts,
	}
}

// ObserveRequest records one served request.
func (m *HTTPMetrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(method, normalizeLabel(route), status).Observe(elapsed.Seconds())
}

// IncCartMutation counts one cart mutation attempt.
func (m *HTTPMetrics) IncCartMutation(operation string, err error) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(operation), outcome(err)).Inc()
}

// IncCheckout counts one checkout submission.
func (m *HTTPMetrics) IncCheckout(err error) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
