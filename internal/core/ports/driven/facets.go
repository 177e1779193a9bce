package driven

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// FacetGenerator discovers facets over a merged result set.
// It is only invoked for non-empty result sets; a failure drops facets from the response.
type FacetGenerator interface {
	Generate(
		ctx context.Context,
		results []domain.SearchResult,
		query domain.ProcessedQuery,
		opts domain.FacetOptions,
	) (*domain.FacetCollection, error)
}
