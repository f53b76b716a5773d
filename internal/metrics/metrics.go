package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus instruments for the decision pipeline.
// A nil *Metrics is valid and records nothing, so library users of the
// engine are not forced to carry a registry.
type Metrics struct {
	registry *prometheus.Registry

	decisions       *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	decisionSeconds prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phishguard",
			Name:      "decisions_total",
			Help:      "URL decisions by enforced action.",
		}, []string{"action"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phishguard",
			Name:      "cache_hits_total",
			Help:      "Prediction cache hits.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phishguard",
			Name:      "cache_misses_total",
			Help:      "Prediction cache misses.",
		}),
		decisionSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "phishguard",
			Name:      "decision_duration_seconds",
			Help:      "End-to-end wall-clock latency per decision.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
}

// Handler serves the exposition endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveDecision(action string, seconds float64) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(action).Inc()
	m.decisionSeconds.Observe(seconds)
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
