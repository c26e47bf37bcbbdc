// Package metrics exposes Prometheus metrics for the club service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "club"

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	balanceRuns   prometheus.Counter
	teamSetsSaved prometheus.Counter
	teamSpread    prometheus.Histogram
	httpRequests  *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		balanceRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_runs_total",
			Help:      "Number of team balancing runs.",
		}),
		teamSetsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "team_sets_saved_total",
			Help:      "Number of team sets persisted.",
		}),
		teamSpread: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "team_spread",
			Help:      "Gap between the strongest and weakest team total per balancing run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(m.balanceRuns, m.teamSetsSaved, m.teamSpread, m.httpRequests)
	return m
}

// ObserveBalance records one balancing run and its spread
func (m *Metrics) ObserveBalance(spread int) {
	m.balanceRuns.Inc()
	m.teamSpread.Observe(float64(spread))
}

// TeamSetSaved records a persisted team set
func (m *Metrics) TeamSetSaved() {
	m.teamSetsSaved.Inc()
}

// ObserveRequest records a finished HTTP request
func (m *Metrics) ObserveRequest(method, route, status string) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
