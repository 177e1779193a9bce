package driven

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// QueryUnderstanding turns a validated request into a processed query
// (keywords, intent, complexity, expected result types).
type QueryUnderstanding interface {
	Process(ctx context.Context, req domain.SearchRequest) (domain.ProcessedQuery, error)
}
