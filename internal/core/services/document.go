package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
	"github.com/four-robots/unisearch/internal/core/ports/driving"
	"github.com/four-robots/unisearch/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// localTypes is the content type each writable backend stores.
var localTypes = map[string]domain.ContentType{
	domain.SourceMemory: domain.ContentTypeMemoryNote,
	domain.SourceKanban: domain.ContentTypeKanbanCard,
	domain.SourceWiki:   domain.ContentTypeWikiPage,
}

// LocalSources lists the backends whose documents live in the local store.
func LocalSources() []string {
	return []string{domain.SourceMemory, domain.SourceKanban, domain.SourceWiki}
}

// DocumentService manages documents of the local backends.
// Every change clears the response cache, if one is set, so searches see it.
type DocumentService struct {
	docStore driven.DocumentStore
	cache    driven.CacheGateway
	log      *zap.Logger
	now      func() time.Time
}

// NewDocumentService creates a new document service. cache and log may be nil.
func NewDocumentService(docStore driven.DocumentStore, cache driven.CacheGateway, log *zap.Logger) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		cache:    cache,
		log:      logger.OrNop(log).With(zap.String("module", "documents")),
		now:      time.Now,
	}
}

// Add stores a document in a local backend.
func (s *DocumentService) Add(ctx context.Context, doc domain.Document) (*domain.Document, error) {
	want, ok := localTypes[doc.SourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a local source", domain.ErrUnsupportedType, doc.SourceID)
	}
	if doc.Type == "" {
		doc.Type = want
	}
	if doc.Type != want {
		return nil, domain.NewValidationError("type",
			fmt.Sprintf("source %s stores %s, not %s", doc.SourceID, want, doc.Type))
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return nil, err
	}
	s.log.Info("document added", zap.String("source", doc.SourceID), zap.String("id", doc.ID))
	s.invalidate(ctx)
	return &doc, nil
}

// Get retrieves a document by source and ID.
func (s *DocumentService) Get(ctx context.Context, sourceID, id string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, sourceID, id)
}

// List returns the documents of a source.
func (s *DocumentService) List(ctx context.Context, sourceID string) ([]domain.Document, error) {
	if _, ok := localTypes[sourceID]; !ok {
		return nil, fmt.Errorf("%w: %q is not a local source", domain.ErrUnsupportedType, sourceID)
	}
	return s.docStore.ListDocuments(ctx, sourceID)
}

// Remove deletes a document. Removing a missing document returns domain.ErrNotFound.
func (s *DocumentService) Remove(ctx context.Context, sourceID, id string) error {
	if _, err := s.docStore.GetDocument(ctx, sourceID, id); err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, sourceID, id); err != nil {
		return err
	}
	s.log.Info("document removed", zap.String("source", sourceID), zap.String("id", id))
	s.invalidate(ctx)
	return nil
}

func (s *DocumentService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn("clearing cache after index change", zap.Error(err))
	}
}
