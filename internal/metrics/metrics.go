// Package metrics provides Prometheus metrics for the ETF holdings service.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etf_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Ingestion Metrics
	ParseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etf_csv_parse_failures_total",
			Help: "CSV files rejected by the parser, by reason",
		},
		[]string{"reason"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etf_uploads_total",
			Help: "Ingestion attempts recorded in upload history, by status",
		},
		[]string{"status"},
	)

	HoldingsWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etf_holdings_written_total",
			Help: "Holding rows persisted",
		},
	)

	HoldingWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etf_holding_write_failures_total",
			Help: "Holding rows that failed to persist",
		},
	)

	SnapshotSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "etf_snapshot_save_duration_seconds",
			Help:    "Time taken to persist one snapshot",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ValidationWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etf_validation_warnings_total",
			Help: "Dataset validation warnings, by code",
		},
		[]string{"code"},
	)

	// Compare Metrics
	ComparesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etf_snapshot_compares_total",
			Help: "Snapshot comparisons served, by kind (pair, previous, export)",
		},
		[]string{"kind"},
	)

	// Stock detail cache
	StockCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etf_stock_cache_lookups_total",
			Help: "Stock detail cache lookups, by result (hit, miss)",
		},
		[]string{"result"},
	)
)
