package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported by the API.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthFailuresTotal        *prometheus.CounterVec
	SprintItemsAssignedTotal prometheus.Counter
	SprintsCompletedTotal    prometheus.Counter
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ucpm_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ucpm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ucpm_auth_failures_total",
			Help: "Total number of rejected credentials or tokens.",
		}, []string{"reason"}),

		SprintItemsAssignedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ucpm_sprint_items_assigned_total",
			Help: "Total number of backlog items assigned to sprints.",
		}),

		SprintsCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ucpm_sprints_completed_total",
			Help: "Total number of sprints ended.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthFailuresTotal,
		m.SprintItemsAssignedTotal,
		m.SprintsCompletedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterDBStats exports connection pool statistics for db.
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) {
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, pathPattern string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(elapsed.Seconds())
}

func (m *Metrics) IncAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) AddSprintItemsAssigned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SprintItemsAssignedTotal.Add(float64(n))
}

func (m *Metrics) IncSprintsCompleted() {
	if m == nil {
		return
	}
	m.SprintsCompletedTotal.Inc()
}
