// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/duespay/internal/ledger"
)

const namespace = "duespay"

// Metrics holds every collector. Create one per registry.
type Metrics struct {
	registry *prometheus.Registry

	RPCRequests         *prometheus.CounterVec
	RPCDuration         *prometheus.HistogramVec
	PaymentsSubmitted   *prometheus.CounterVec
	PaymentsAdjudicated *prometheus.CounterVec
	BillsCreated        prometheus.Counter
	ReceiptUploads      *prometheus.CounterVec
}

// New registers the collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		PaymentsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_submitted_total",
			Help:      "Payments admitted, by payment type.",
		}, []string{"type"}),
		PaymentsAdjudicated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_adjudicated_total",
			Help:      "Payments approved or rejected.",
		}, []string{"action"}),
		BillsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_created_total",
			Help:      "Monthly bills opened.",
		}),
		ReceiptUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_uploads_total",
			Help:      "Receipt uploads by outcome.",
		}, []string{"outcome"}),
	}
}

// LedgerHooks feeds ledger state changes into the counters.
func (m *Metrics) LedgerHooks() ledger.Hooks {
	return ledger.Hooks{
		PaymentSubmitted: func(paymentType string) {
			m.PaymentsSubmitted.WithLabelValues(paymentType).Inc()
		},
		PaymentAdjudicated: func(action string) {
			m.PaymentsAdjudicated.WithLabelValues(action).Inc()
		},
		BillCreated: m.BillsCreated.Inc,
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
