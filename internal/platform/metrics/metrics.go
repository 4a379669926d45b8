package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the lifecycle engine. It owns a
// private registry so tests can create instances freely.
type Metrics struct {
	itemsSubmitted prometheus.Counter
	transitions    *prometheus.CounterVec
	registry       *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	itemsSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecopass_items_submitted_total",
		Help: "Total number of e-waste items submitted",
	})
	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecopass_transitions_total",
			Help: "Total lifecycle transitions applied, by resulting status",
		},
		[]string{"status"},
	)

	registry.MustRegister(itemsSubmitted, transitions)

	return &Metrics{
		itemsSubmitted: itemsSubmitted,
		transitions:    transitions,
		registry:       registry,
	}
}

func (m *Metrics) ItemSubmitted() {
	m.itemsSubmitted.Inc()
}

func (m *Metrics) TransitionApplied(status string) {
	m.transitions.WithLabelValues(status).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
