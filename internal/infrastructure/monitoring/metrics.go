package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client's Prometheus collectors. Each instance owns its
// registry so several independently configured clients can coexist.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RetriesTotal     *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
	CompressionCount prometheus.Gauge
}

// NewMetrics creates a new metrics collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tinify_requests_total",
				Help: "Total number of HTTP attempts sent to the service",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tinify_request_duration_seconds",
				Help:    "Duration of logical calls, retries included",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method"},
		),
		RetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tinify_retries_total",
				Help: "Total number of retried attempts",
			},
			[]string{"reason"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tinify_errors_total",
				Help: "Total number of calls that failed, by error kind",
			},
			[]string{"kind"},
		),
		CompressionCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tinify_compression_count",
				Help: "Compression count last reported by the service",
			},
		),
	}
}

// Registry exposes the collectors for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAttempt counts one HTTP attempt. status is 0 when no response
// arrived.
func (m *Metrics) RecordAttempt(method string, status int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, statusLabel(status)).Inc()
}

// RecordCall observes the duration of a logical call.
func (m *Metrics) RecordCall(method string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordRetry counts a retried attempt.
func (m *Metrics) RecordRetry(reason string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(reason).Inc()
}

// RecordError counts a failed call.
func (m *Metrics) RecordError(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// SetCompressionCount mirrors the service-reported count.
func (m *Metrics) SetCompressionCount(n int64) {
	if m == nil {
		return
	}
	m.CompressionCount.Set(float64(n))
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}
