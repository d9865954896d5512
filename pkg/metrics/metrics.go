// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AssemblyAnomaliesTotal counts references that did not resolve to exactly one row
	AssemblyAnomaliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "assembly",
			Name:      "anomalies_total",
			Help:      "Total number of anomalous references found while assembling actions",
		},
		[]string{"kind"},
	)

	// AssemblyDuration tracks fetch plus assembly time in seconds
	AssemblyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "assembly",
			Name:      "duration_seconds",
			Help:      "Duration of catalog fetch and assembly in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// AssembledActions is the number of actions in the last assembled snapshot
	AssembledActions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fern",
			Subsystem: "assembly",
			Name:      "actions",
			Help:      "Number of actions in the last assembled snapshot",
		},
	)

	// CacheRequestsTotal tracks snapshot cache lookups by result
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Total number of snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	// TableFetchDuration tracks per table query time
	TableFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "catalog",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of catalog table fetches in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"table"},
	)

	// HTTPRequestsTotal tracks inbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "http_server",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "http_server",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
)

const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// RecordCacheLookup increments the cache lookup counter
func RecordCacheLookup(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordAssembly records the outcome of one fetch and assembly
func RecordAssembly(actions int, anomalies map[string]int, durationSeconds float64) {
	AssemblyDuration.Observe(durationSeconds)
	AssembledActions.Set(float64(actions))
	for kind, count := range anomalies {
		AssemblyAnomaliesTotal.WithLabelValues(kind).Add(float64(count))
	}
}

// RecordTableFetch records a catalog table query
func RecordTableFetch(table string, durationSeconds float64) {
	TableFetchDuration.WithLabelValues(table).Observe(durationSeconds)
}

// RecordHTTPRequest records an inbound HTTP request metric
func RecordHTTPRequest(method, route, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
