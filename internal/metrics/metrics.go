// Package metrics defines Prometheus metrics for chronicle.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronicle_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ChangesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_changes_recorded_total",
			Help: "Change records appended to the audit log, by change type",
		},
		[]string{"change_type"},
	)

	TransactionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_transactions_closed_total",
			Help: "Transactions reaching a terminal status",
		},
		[]string{"status"},
	)

	AuditGaps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chronicle_audit_gaps_total",
			Help: "Entity mutations whose audit append failed afterwards",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronicle_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ChangesRecorded, TransactionsClosed, AuditGaps,
		WSConnections,
	)
}
