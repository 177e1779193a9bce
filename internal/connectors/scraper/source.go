package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.SourcePort = (*Source)(nil)

// Metadata fields set on scraper results.
const (
	FieldDomain = "domain"
	FieldPageID = "page_id"
)

// kindChunk marks a fragment of a page in the service response.
const kindChunk = "chunk"

// Source is the scraper service backend.
type Source struct {
	client *Client
	log    *zap.Logger
}

// NewSource creates the scraper source over client.
func NewSource(client *Client, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{client: client, log: log.With(zap.String("source", domain.SourceScraper))}
}

// ID returns "scraper".
func (s *Source) ID() string {
	return domain.SourceScraper
}

// ContentTypes returns scraped_page and scraped_chunk.
func (s *Source) ContentTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentTypeScrapedPage, domain.ContentTypeScrapedChunk}
}

// Search asks the service for pages and chunks matching the query.
func (s *Source) Search(ctx context.Context, q domain.SourceQuery) ([]domain.SearchResult, error) {
	var kinds []string
	if q.Filters.AllowsType(domain.ContentTypeScrapedPage) {
		kinds = append(kinds, string(domain.ContentTypeScrapedPage))
	}
	if q.Filters.AllowsType(domain.ContentTypeScrapedChunk) {
		kinds = append(kinds, string(domain.ContentTypeScrapedChunk))
	}
	if len(kinds) == 0 {
		return []domain.SearchResult{}, nil
	}

	start := time.Now()
	hits, err := s.client.Search(ctx, searchRequest{
		Query:        q.Text,
		Keywords:     q.Keywords,
		Limit:        q.Limit,
		ContentTypes: kinds,
		Semantic:     q.Semantic,
	})
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		r, ok := toResult(h)
		if !ok || !q.Filters.AllowsType(r.Type) {
			continue
		}
		results = append(results, r)
	}
	s.log.Debug("scraper search",
		zap.Int("hits", len(hits)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

// toResult maps a service hit. Hits without an ID are dropped.
func toResult(h hit) (domain.SearchResult, bool) {
	if h.ID == "" {
		return domain.SearchResult{}, false
	}
	typ := domain.ContentTypeScrapedPage
	if h.Kind == kindChunk || h.Kind == string(domain.ContentTypeScrapedChunk) {
		typ = domain.ContentTypeScrapedChunk
	}
	title := h.Title
	if title == "" {
		title = h.URL
	}

	r := domain.SearchResult{
		ID:      h.ID,
		Type:    typ,
		Title:   title,
		Preview: domain.TruncatePreview(h.Content),
		URL:     h.URL,
		Score: domain.Score{
			Relevance:    clamp01(h.Score),
			QualityScore: h.Quality,
		},
		Metadata: domain.ResultMetadata{
			Tags:   h.Tags,
			Source: domain.SourceScraper,
		},
	}
	if h.CreatedAt != nil {
		r.Metadata.CreatedAt = *h.CreatedAt
	}
	if h.UpdatedAt != nil {
		r.Metadata.UpdatedAt = *h.UpdatedAt
	}
	fields := map[string]string{}
	if h.Domain != "" {
		fields[FieldDomain] = h.Domain
	}
	if h.PageID != "" {
		fields[FieldPageID] = h.PageID
	}
	if len(fields) > 0 {
		r.Metadata.Fields = fields
	}
	return r, true
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
