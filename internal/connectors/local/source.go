// Package local implements the memory, kanban and wiki backends over a DocumentStore.
package local

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.SourcePort = (*Source)(nil)

// RecencyHalfLife is the document age at which the recency signal drops to 0.5.
const RecencyHalfLife = 30 * 24 * time.Hour

// Source is one local backend. Its documents live in the shared store under its ID.
type Source struct {
	id    string
	types []domain.ContentType
	store driven.DocumentStore
	embed driven.EmbeddingService
	log   *zap.Logger
	now   func() time.Time
}

// New creates a local backend serving documents stored under id.
func New(id string, types []domain.ContentType, store driven.DocumentStore, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{
		id:    id,
		types: types,
		store: store,
		log:   log.With(zap.String("source", id)),
		now:   time.Now,
	}
}

// NewMemory creates the memory-note backend.
func NewMemory(store driven.DocumentStore, log *zap.Logger) *Source {
	return New(domain.SourceMemory, []domain.ContentType{domain.ContentTypeMemoryNote}, store, log)
}

// NewKanban creates the kanban-card backend.
func NewKanban(store driven.DocumentStore, log *zap.Logger) *Source {
	return New(domain.SourceKanban, []domain.ContentType{domain.ContentTypeKanbanCard}, store, log)
}

// NewWiki creates the wiki-page backend.
func NewWiki(store driven.DocumentStore, log *zap.Logger) *Source {
	return New(domain.SourceWiki, []domain.ContentType{domain.ContentTypeWikiPage}, store, log)
}

// WithEmbedder enables semantic similarity for requests that ask for it.
func (s *Source) WithEmbedder(e driven.EmbeddingService) *Source {
	s.embed = e
	return s
}

// ID returns the backend identifier.
func (s *Source) ID() string {
	return s.id
}

// ContentTypes returns the types this backend stores.
func (s *Source) ContentTypes() []domain.ContentType {
	return s.types
}

// Search matches the query keywords (or the raw text when there are none)
// against the store and applies the date filter natively.
func (s *Source) Search(ctx context.Context, q domain.SourceQuery) ([]domain.SearchResult, error) {
	terms := q.Keywords
	if len(terms) == 0 && q.Text != "" {
		terms = []string{q.Text}
	}

	var types []domain.ContentType
	for _, t := range s.types {
		if q.Filters.AllowsType(t) {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return []domain.SearchResult{}, nil
	}

	matches, err := s.store.SearchDocuments(ctx, s.id, domain.DocumentQuery{
		Terms: terms,
		Types: types,
		Limit: q.Limit,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		if q.Filters.DateRange != nil && !q.Filters.DateRange.Contains(m.Document.CreatedAt) {
			continue
		}
		results = append(results, s.toResult(m, now))
	}
	if q.Semantic && s.embed != nil && len(results) > 0 {
		s.addSemantic(ctx, q.Text, results)
	}
	s.log.Debug("local search", zap.Int("terms", len(terms)), zap.Int("results", len(results)))
	return results, nil
}

func (s *Source) toResult(m domain.DocumentMatch, now time.Time) domain.SearchResult {
	doc := m.Document
	score := m.Score
	r := domain.SearchResult{
		ID:      doc.ID,
		Type:    doc.Type,
		Title:   doc.Title,
		Preview: doc.Preview(),
		URL:     doc.URI,
		Score: domain.Score{
			Relevance:    score,
			TextMatch:    &score,
			QualityScore: doc.Quality,
		},
		Metadata: domain.ResultMetadata{
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
			Tags:      doc.Tags,
			Source:    s.id,
			Fields:    doc.Fields,
		},
	}
	if rb, ok := recency(doc, now); ok {
		r.Score.RecencyBoost = &rb
	}
	return r
}

// addSemantic scores each result by cosine similarity between the query and
// its title and preview. Failures leave the results without a semantic score.
func (s *Source) addSemantic(ctx context.Context, text string, results []domain.SearchResult) {
	texts := make([]string, 0, len(results)+1)
	texts = append(texts, text)
	for _, r := range results {
		texts = append(texts, r.Title+"\n"+r.Preview)
	}

	vecs, err := s.embed.EmbedBatch(ctx, texts)
	if err != nil || len(vecs) != len(texts) {
		s.log.Warn("semantic scoring skipped", zap.String("model", s.embed.ModelName()), zap.Error(err))
		return
	}
	for i := range results {
		sim := cosine(vecs[0], vecs[i+1])
		results[i].Score.SemanticSimilarity = &sim
	}
}

// cosine returns the cosine similarity clamped to [0,1]. Mismatched or zero vectors give 0.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Max(0, math.Min(1, dot/(math.Sqrt(na)*math.Sqrt(nb))))
}

// recency decays exponentially with the age of the last update.
func recency(doc domain.Document, now time.Time) (float64, bool) {
	at := doc.UpdatedAt
	if at.IsZero() {
		at = doc.CreatedAt
	}
	if at.IsZero() {
		return 0, false
	}
	age := now.Sub(at)
	if age <= 0 {
		return 1, true
	}
	return math.Exp2(-float64(age) / float64(RecencyHalfLife)), true
}
