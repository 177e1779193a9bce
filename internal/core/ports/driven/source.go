package driven

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// SourcePort is the search capability of one content backend.
// Each backend (memory, kanban, wiki, scraper, github) implements this interface.
type SourcePort interface {
	// ID returns the backend identifier (e.g. "wiki").
	ID() string

	// ContentTypes returns every content type this backend can produce.
	// The orchestrator skips the backend when the request filter excludes all of them.
	ContentTypes() []domain.ContentType

	// Search runs the query against the backend.
	// It must be safe to call with an empty or irrelevant filter set.
	// The context carries the soft deadline; implementations should honour it
	// but the orchestrator does not depend on it.
	Search(ctx context.Context, query domain.SourceQuery) ([]domain.SearchResult, error)
}
