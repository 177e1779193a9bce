package driven

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// DocumentStore persists the documents behind the local backends.
// Implementations: memory (tests), SQLite with FTS5.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by source and ID.
	// Returns domain.ErrNotFound when missing.
	GetDocument(ctx context.Context, sourceID, id string) (*domain.Document, error)

	// DeleteDocument removes a document. Deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, sourceID, id string) error

	// ListDocuments returns every document for a source, newest first.
	ListDocuments(ctx context.Context, sourceID string) ([]domain.Document, error)

	// SearchDocuments returns documents of a source matching the query, best first.
	SearchDocuments(ctx context.Context, sourceID string, query domain.DocumentQuery) ([]domain.DocumentMatch, error)
}
