package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Outbound processor calls
	ProcessorCallsTotal   *prometheus.CounterVec
	ProcessorCallDuration *prometheus.HistogramVec
	RequeryFallbacksTotal *prometheus.CounterVec

	// Transaction ledger
	TransactionsRecorded *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ProcessorCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "processor_calls_total",
				Help:      "Total number of outbound processor calls by operation and outcome",
			},
			[]string{"processor", "operation", "outcome"},
		),
		ProcessorCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processor_call_duration_seconds",
				Help:      "Outbound processor call duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"processor", "operation"},
		),
		RequeryFallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requery_fallbacks_total",
				Help:      "Total number of confirm failures resolved through the requery fallback",
			},
			[]string{"outcome"},
		),
		TransactionsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_recorded_total",
				Help:      "Total number of ledger rows written",
			},
			[]string{"source"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.ProcessorCallsTotal,
		m.ProcessorCallDuration,
		m.RequeryFallbacksTotal,
		m.TransactionsRecorded,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
