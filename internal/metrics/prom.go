package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Suggestion outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeUnavailable = "unavailable"
	OutcomeDiscarded   = "discarded"
)

// Collectors are the Prometheus series exported on /metrics. A nil
// *Collectors ignores every observation.
type Collectors struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	suggestions  *prometheus.CounterVec
	items        *prometheus.GaugeVec
	persistFails prometheus.Counter
}

// NewCollectors creates the collectors and registers them, together with
// the Go runtime and process collectors, on reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suggestion_requests_total",
			Help: "Ingredient suggestion requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smartgrocer_items",
			Help: "Items on the live list by status.",
		}, []string{"status"}),
		persistFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartgrocer_persistence_failures_total",
			Help: "Writes to the persistent store that failed.",
		}),
	}
	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.suggestions,
		c.items,
		c.persistFails,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveHTTP records one served request.
func (c *Collectors) ObserveHTTP(method, route string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveSuggestion records the outcome of a suggestion request.
func (c *Collectors) ObserveSuggestion(kind, outcome string) {
	if c == nil {
		return
	}
	c.suggestions.WithLabelValues(kind, outcome).Inc()
}

// SetItems publishes the live list counters.
func (c *Collectors) SetItems(pending, completed int) {
	if c == nil {
		return
	}
	c.items.WithLabelValues("pending").Set(float64(pending))
	c.items.WithLabelValues("completed").Set(float64(completed))
}

// PersistenceFailed counts a failed write.
func (c *Collectors) PersistenceFailed() {
	if c == nil {
		return
	}
	c.persistFails.Inc()
}
