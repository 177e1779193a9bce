package driven

import "time"

// SearchMetrics receives instrumentation from the search pipeline.
type SearchMetrics interface {
	// ObserveSource records one backend call. status is "success", "error", "timeout" or "skipped".
	ObserveSource(source, status string, elapsed time.Duration, results int)

	// ObserveSearch records one pipeline run. status is "ok", "cached", "degraded" or "invalid".
	ObserveSearch(status string, elapsed time.Duration, totalCount int)
}
