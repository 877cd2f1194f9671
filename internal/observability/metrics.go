// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Resolution metrics
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionErrors   *prometheus.CounterVec
	ResolutionDuration prometheus.Histogram
	ActiveSamples      prometheus.Histogram

	// Ingestion metrics
	SamplesIngested prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "pvt_resolver"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Resolution metrics
		ResolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "resolved_total",
			Help:      "Total number of resolved requests by resolution case",
		}, []string{"case"}),
		ResolutionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "errors_total",
			Help:      "Total number of failed resolutions by stage",
		}, []string{"stage"}),
		ResolutionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "duration_seconds",
			Help:      "End-to-end resolution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ActiveSamples: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "active_samples",
			Help:      "Number of samples active in the selected snapshot",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		}),

		// Ingestion metrics
		SamplesIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "samples_ingested_total",
			Help:      "Total number of PVT samples written to the store",
		}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// HandlerFor serves metrics gathered from a dedicated registry.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordResolution records a successful resolution.
func (m *Metrics) RecordResolution(resolutionCase string, activeSamples int, seconds float64) {
	m.ResolutionsTotal.WithLabelValues(resolutionCase).Inc()
	m.ActiveSamples.Observe(float64(activeSamples))
	m.ResolutionDuration.Observe(seconds)
}

// RecordResolutionError records a failed resolution at the given stage.
func (m *Metrics) RecordResolutionError(stage string) {
	m.ResolutionErrors.WithLabelValues(stage).Inc()
}

// RecordSamplesIngested adds n to the ingested samples counter.
func (m *Metrics) RecordSamplesIngested(n int) {
	m.SamplesIngested.Add(float64(n))
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(route string, code int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
