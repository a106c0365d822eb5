package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{"resolved", "rejected", "cancelled"} {
		PipelineRunsTotal.WithLabelValues(outcome)
	}
	for _, phase := range []string{"scan", "enrich"} {
		PipelinePhaseDuration.WithLabelValues(phase)
	}

	for _, outcome := range []string{"success", "failure"} {
		EnrichmentCallsTotal.WithLabelValues(outcome)
	}
	for _, t := range []string{"image", "video"} {
		for _, status := range []string{"success", "error"} {
			ThumbnailGenerationsTotal.WithLabelValues(t, status)
		}
	}

	for _, result := range []string{"hit", "miss"} {
		CacheLookupsTotal.WithLabelValues(result)
	}
	for _, op := range []string{"open", "save", "checkpoint"} {
		CacheStoreOperationDuration.WithLabelValues(op)
		CacheStoreErrors.WithLabelValues(op)
	}
}
