package driving

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// SearchService provides federated search to external actors.
type SearchService interface {
	// Search fans the request out to every applicable backend and returns the
	// merged, ranked and paginated response. Only validation failures are
	// returned as errors; every other failure yields a degraded response.
	Search(ctx context.Context, req domain.SearchRequest, userID, sessionID string) (domain.UnifiedResponse, error)

	// Sources lists the registered backends.
	Sources() []domain.SourceInfo

	// AnalyticsStats passes through to the analytics gateway.
	AnalyticsStats(ctx context.Context) (domain.AnalyticsStats, error)

	// CacheStats passes through to the cache gateway.
	CacheStats(ctx context.Context) (domain.CacheStats, error)

	// ClearCache passes through to the cache gateway.
	ClearCache(ctx context.Context) error
}
