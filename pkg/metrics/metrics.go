// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "insitu"

// Outcome labels for ingest and insert observations.
const (
	OutcomeOK          = "ok"
	OutcomeUnsupported = "unsupported"
	OutcomeParseError  = "parse_error"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	uploads         *prometheus.CounterVec
	parseDuration   *prometheus.HistogramVec
	readingsParsed  *prometheus.CounterVec
	recordsInserted prometheus.Counter
	insertBatches   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_uploads_total",
			Help:      "Instrument log files received, by format and outcome.",
		}, []string{"format", "outcome"}),
		parseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "log_parse_duration_seconds",
			Help:      "Time spent decoding an instrument log.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"format"}),
		readingsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_readings_parsed_total",
			Help:      "Readings decoded from instrument logs.",
		}, []string{"format"}),
		recordsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_records_inserted_total",
			Help:      "Sensor rows committed to sensor_data.",
		}),
		insertBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_insert_batches_total",
			Help:      "Sensor insert batches, by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploads,
		m.parseDuration,
		m.readingsParsed,
		m.recordsInserted,
		m.insertBatches,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpload records one dispatched upload.
func (m *Metrics) ObserveUpload(format, outcome string, elapsed time.Duration, readings int) {
	if m == nil {
		return
	}
	if format == "" {
		format = "unknown"
	}
	m.uploads.WithLabelValues(format, outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeParseError {
		m.parseDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	}
	if readings > 0 {
		m.readingsParsed.WithLabelValues(format).Add(float64(readings))
	}
}

// ObserveInsert records one sensor insert batch.
func (m *Metrics) ObserveInsert(outcome string, inserted int64) {
	if m == nil {
		return
	}
	m.insertBatches.WithLabelValues(outcome).Inc()
	if inserted > 0 {
		m.recordsInserted.Add(float64(inserted))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, codeLabel(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func codeLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
