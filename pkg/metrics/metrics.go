package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart, checkout, and upstream activity.
type StorefrontMetrics struct {
	cartNoops           *prometheus.CounterVec
	checkoutTransitions *prometheus.CounterVec
	upstreamRequests    *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartNoops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_noop_operations_total",
		Help: "Cart operations that targeted a missing line identity.",
	}, []string{"operation"})
	checkoutTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_transitions_total",
		Help: "Checkout stage transitions.",
	}, []string{"stage"})
	upstreamRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_upstream_requests_total",
		Help: "Upstream commerce API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_upstream_request_duration_seconds",
		Help:    "Upstream commerce API request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	reg.MustRegister(cartNoops, checkoutTransitions, upstreamRequests, upstreamDuration)
	return &StorefrontMetrics{
		cartNoops:           cartNoops,
		checkoutTransitions: checkoutTransitions,
		upstreamRequests:    upstreamRequests,
		upstreamDuration:    upstreamDuration,
	}
}

// IncCartNoop counts a cart operation that found no matching line.
func (m *StorefrontMetrics) IncCartNoop(operation string) {
	if m == nil || m.cartNoops == nil {
		return
	}
	m.cartNoops.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncCheckoutTransition counts entry into the named stage.
func (m *StorefrontMetrics) IncCheckoutTransition(stage string) {
	if m == nil || m.checkoutTransitions == nil {
		return
	}
	m.checkoutTransitions.WithLabelValues(normalizeLabel(stage)).Inc()
}

// ObserveUpstream records one upstream call.
func (m *StorefrontMetrics) ObserveUpstream(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if m.upstreamRequests != nil {
		m.upstreamRequests.WithLabelValues(normalizeLabel(endpoint), normalizeLabel(outcome)).Inc()
	}
	if m.upstreamDuration != nil {
		m.upstreamDuration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
