package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stage metrics
var (
	StageItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidy_stage_items_processed_total",
			Help: "Total number of work items completed per pipeline stage",
		},
		[]string{"stage"},
	)

	StageItemFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidy_stage_item_failures_total",
			Help: "Total number of work items that failed per pipeline stage",
		},
		[]string{"stage"},
	)

	StageLastRunDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tidy_stage_last_run_duration_seconds",
			Help: "Duration of the last run of each pipeline stage",
		},
		[]string{"stage"},
	)

	StageWorkers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tidy_stage_workers",
			Help: "Configured worker count for the last run of each stage",
		},
		[]string{"stage"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidy_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tidy_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Collaborator metrics
var (
	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidy_geocode_lookups_total",
			Help: "Total number of reverse geocode lookups",
		},
		[]string{"status"},
	)

	ThumbnailsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tidy_thumbnails_generated_total",
			Help: "Total number of thumbnails produced by the conversion tool",
		},
	)

	ThumbnailsRepaired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tidy_thumbnails_repaired_total",
			Help: "Total number of thumbnail references repaired from existing files",
		},
	)

	ThumbnailFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tidy_thumbnail_failures_total",
			Help: "Total number of conversions that produced no output file",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tidy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
