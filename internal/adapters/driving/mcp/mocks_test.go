package mcp

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response  domain.UnifiedResponse
	lastReq   domain.SearchRequest
	sources   []domain.SourceInfo
	cache     domain.CacheStats
	analytics domain.AnalyticsStats
	cleared   bool
	err       error
}

func (m *mockSearchService) Search(
	_ context.Context,
	req domain.SearchRequest,
	_, _ string,
) (domain.UnifiedResponse, error) {
	m.lastReq = req
	return m.response, m.err
}

func (m *mockSearchService) Sources() []domain.SourceInfo {
	return m.sources
}

func (m *mockSearchService) AnalyticsStats(_ context.Context) (domain.AnalyticsStats, error) {
	return m.analytics, m.err
}

func (m *mockSearchService) CacheStats(_ context.Context) (domain.CacheStats, error) {
	return m.cache, m.err
}

func (m *mockSearchService) ClearCache(_ context.Context) error {
	if m.err == nil {
		m.cleared = true
	}
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	added     domain.Document
	err       error
}

func (m *mockDocumentService) Add(_ context.Context, doc domain.Document) (*domain.Document, error) {
	m.added = doc
	if m.err != nil {
		return nil, m.err
	}
	if doc.ID == "" {
		doc.ID = "generated"
	}
	doc.Type = domain.ContentTypeMemoryNote
	return &doc, nil
}

func (m *mockDocumentService) Get(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Remove(_ context.Context, _, _ string) error {
	return m.err
}
