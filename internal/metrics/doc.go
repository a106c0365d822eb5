// Package metrics provides Prometheus instrumentation for media-browser.
//
// All metrics are prefixed with "media_browser_" and registered on the
// default registry through promauto, so importing the package is enough to
// have them served at /metrics.
//
// # Metric Categories
//
// ## Pipeline
//   - PipelineRunsTotal: runs by outcome (resolved, rejected, cancelled)
//   - PipelinePhaseDuration: histogram of scan and enrich phase durations
//   - PipelineRunning: 1 while a run is in flight
//   - PipelineFilesReturned: files in the last resolved result
//
// ## Scanner
//   - ScannerDirectoriesRead: directories listed
//   - ScannerFilesFound: files accepted by the extension allow-list
//
// ## Enrichment
//   - EnrichmentCallsTotal: calls to the enrichment service by outcome
//   - EnrichmentCallDuration: histogram of call latency
//   - ThumbnailGenerationsTotal: thumbnails produced by the built-in service
//
// ## Cache Store
//   - CacheLookupsTotal: lookups by result (hit, miss)
//   - CacheStoreOperationDuration: histogram by operation (open, save, checkpoint)
//   - CacheStoreErrors: failures by operation
//
// ## Filesystem
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures,
//     FilesystemStaleErrors, FilesystemRetryDuration: NFS retry behavior by
//     operation and volume (root label)
package metrics
