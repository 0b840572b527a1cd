package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BillingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_runs_total",
			Help: "Billing cycle invocations by outcome",
		},
		[]string{"outcome"},
	)

	BillingAssetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_assets_total",
			Help: "Assets processed by billing runs, by bucket",
		},
		[]string{"bucket"},
	)

	QuickBooksSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickbooks_sync_total",
			Help: "Invoice sync attempts against QuickBooks",
		},
		[]string{"status"},
	)
)
