// Package metrics exposes Prometheus instrumentation for the admission
// middleware. It is purely observational: nothing here ever influences
// an admit/reject decision, so it carries no conflict with the
// token/leaky-bucket and approximate-counting non-goals.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the counters and histograms the middleware updates
// per request. The zero value is not usable; construct with New.
type Collector struct {
	Decisions       *prometheus.CounterVec
	StoreRoundTrips *prometheus.HistogramVec
}

// New registers admitgate's metrics against reg and returns the
// Collector. Pass prometheus.NewRegistry() in tests to avoid colliding
// with the default global registry.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admitgate_admission_decisions_total",
			Help: "Count of admission decisions by identifier, strictest rule index, and outcome.",
		}, []string{"identifier", "rule_index", "outcome"}),
		StoreRoundTrips: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admitgate_store_round_trip_seconds",
			Help:    "Latency of store round-trips made while resolving config or evaluating a rule.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(c.Decisions, c.StoreRoundTrips)
	return c
}

// ObserveDecision records one admission outcome.
func (c *Collector) ObserveDecision(identifier, ruleIndex, outcome string) {
	c.Decisions.WithLabelValues(identifier, ruleIndex, outcome).Inc()
}

// ObserveRoundTrip records the latency of one store round-trip.
func (c *Collector) ObserveRoundTrip(operation string, d time.Duration) {
	c.StoreRoundTrips.WithLabelValues(operation).Observe(d.Seconds())
}
