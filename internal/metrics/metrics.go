// Package metrics holds the Prometheus collectors for speech synthesis and
// order imports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_assistant"

// Status label values.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusRejected  = "rejected"
	StatusInvalid   = "invalid"
	StatusDuplicate = "duplicate"
)

var (
	// synthesisDuration is a histogram of provider synthesis calls.
	synthesisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tts_synthesis_duration_seconds",
			Help:      "Duration of speech synthesis calls in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	synthesisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_synthesis_total",
			Help:      "Total number of speech synthesis calls",
		},
		[]string{"provider", "status"}, // status: success, error
	)

	fallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_fallbacks_total",
			Help:      "Times a provider failed and the next one was tried",
		},
		[]string{"from"},
	)

	credentialRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_credential_refresh_total",
			Help:      "IAM token exchanges by outcome",
		},
		[]string{"status"}, // status: success, error, rejected
	)

	orderImportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_imports_total",
			Help:      "Order workbook imports by outcome",
		},
		[]string{"status"}, // status: success, invalid, duplicate, error
	)

	allMetrics = []prometheus.Collector{
		synthesisDuration,
		synthesisTotal,
		fallbacksTotal,
		credentialRefreshTotal,
		orderImportsTotal,
	}
)

// NewRegistry returns a registry with every collector of this package plus the
// Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	for _, c := range allMetrics {
		reg.MustRegister(c)
	}
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler exposes reg over HTTP.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// RecordSynthesis records one provider synthesis call.
func RecordSynthesis(provider, status string, durationSeconds float64) {
	synthesisDuration.WithLabelValues(provider).Observe(durationSeconds)
	synthesisTotal.WithLabelValues(provider, status).Inc()
}

// RecordFallback records that provider failed and the orchestrator moved on.
func RecordFallback(provider string) {
	fallbacksTotal.WithLabelValues(provider).Inc()
}

// RecordCredentialRefresh records an IAM token exchange.
func RecordCredentialRefresh(status string) {
	credentialRefreshTotal.WithLabelValues(status).Inc()
}

// RecordOrderImport records the outcome of a workbook import.
func RecordOrderImport(status string) {
	orderImportsTotal.WithLabelValues(status).Inc()
}
