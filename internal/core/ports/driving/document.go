package driving

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// DocumentService manages the documents of the local backends (memory, kanban, wiki).
type DocumentService interface {
	// Add stores a document. A missing ID is generated, a missing type is
	// inferred from the source and timestamps default to now.
	// It returns the stored document.
	Add(ctx context.Context, doc domain.Document) (*domain.Document, error)

	// Get retrieves a document by source and ID.
	Get(ctx context.Context, sourceID, id string) (*domain.Document, error)

	// List returns the documents of a source, newest first.
	List(ctx context.Context, sourceID string) ([]domain.Document, error)

	// Remove deletes a document.
	Remove(ctx context.Context, sourceID, id string) error
}
