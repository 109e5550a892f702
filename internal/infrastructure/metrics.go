package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments the dashboard exposes. A
// dedicated registry keeps the /metrics output limited to what this
// service registers.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	QueriesTotal     prometheus.Counter
	DatasetRecords   prometheus.Gauge
	DatasetReloads   prometheus.Counter
	OutliersDetected prometheus.Counter
}

// NewMetrics creates and registers all instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "odpulse",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "odpulse",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		QueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "odpulse",
			Name:      "dashboard_queries_total",
			Help:      "Dashboard query computations performed.",
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "odpulse",
			Name:      "dataset_records",
			Help:      "Records in the loaded cleaned dataset.",
		}),
		DatasetReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "odpulse",
			Name:      "dataset_reloads_total",
			Help:      "Explicit dataset cache invalidations.",
		}),
		OutliersDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "odpulse",
			Name:      "outliers_detected_total",
			Help:      "Outlier rows flagged across all queries.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.QueriesTotal,
		m.DatasetRecords,
		m.DatasetReloads,
		m.OutliersDetected,
	)
	return m
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
