package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, path and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	SyncPassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bc_sync_passes_total",
		Help: "Reconciliation passes by outcome (success, partial, failed)",
	}, []string{"outcome"})

	SyncEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bc_sync_entries_total",
		Help: "Time entries processed by sync passes, by result",
	}, []string{"result"})

	BCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bc_request_duration_seconds",
		Help:    "Business Central API call latency by method and status code",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	StatusRefreshUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bc_status_refresh_updates_total",
		Help: "Approval status deltas applied by status refresh passes",
	})
)
