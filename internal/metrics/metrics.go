package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics
var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"}, // "resolved", "rejected", "cancelled"
	)

	PipelinePhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_browser_pipeline_phase_duration_seconds",
			Help:    "Duration of pipeline phases in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 1800},
		},
		[]string{"phase"}, // "scan", "enrich"
	)

	PipelineRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_browser_pipeline_running",
			Help: "Whether a pipeline run is in flight (1 = running, 0 = idle)",
		},
	)

	PipelineFilesReturned = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_browser_pipeline_files_returned",
			Help: "Number of files returned by the last resolved run",
		},
	)
)

// Scanner metrics
var (
	ScannerDirectoriesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_browser_scanner_directories_read_total",
			Help: "Total number of directories listed by the scanner",
		},
	)

	ScannerFilesFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_browser_scanner_files_found_total",
			Help: "Total number of files accepted by the scanner",
		},
	)
)

// Enrichment metrics
var (
	EnrichmentCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_enrichment_calls_total",
			Help: "Total number of enrichment service calls by outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	EnrichmentCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_browser_enrichment_call_duration_seconds",
			Help:    "Enrichment service call duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_thumbnail_generations_total",
			Help: "Total number of thumbnails produced by the built-in enrichment service",
		},
		[]string{"type", "status"},
	)
)

// Cache store metrics
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_cache_lookups_total",
			Help: "Total number of cache store lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	CacheStoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_browser_cache_store_operation_duration_seconds",
			Help:    "Cache store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	CacheStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_cache_store_errors_total",
			Help: "Total number of cache store failures by operation",
		},
		[]string{"operation"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries after ESTALE",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_browser_filesystem_retry_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_browser_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_browser_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_browser_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_browser_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_browser_memory_paused",
			Help: "Whether enrichment is paused for memory (1 = paused, 0 = running)",
		},
	)
)
