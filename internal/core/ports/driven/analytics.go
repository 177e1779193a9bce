package driven

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// AnalyticsGateway records completed searches. Recording is best-effort:
// the pipeline never waits on it and ignores its errors.
type AnalyticsGateway interface {
	// Record persists one search event.
	Record(ctx context.Context, event domain.AnalyticsEvent) error

	// Stats summarises recorded events.
	Stats(ctx context.Context) (domain.AnalyticsStats, error)
}
