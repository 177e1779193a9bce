package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// Title hits count double when scoring.
const (
	titleWeight   = 2.0
	contentWeight = 1.0
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Matching is a plain token lookup; it exists for tests and ephemeral runs.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]map[string]domain.Document),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bySource, ok := s.documents[doc.SourceID]
	if !ok {
		bySource = make(map[string]domain.Document)
		s.documents[doc.SourceID] = bySource
	}
	bySource[doc.ID] = cloneDocument(*doc)
	return nil
}

// GetDocument retrieves a document by source and ID.
func (s *DocumentStore) GetDocument(_ context.Context, sourceID, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[sourceID][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneDocument(doc)
	return &out, nil
}

// DeleteDocument removes a document.
func (s *DocumentStore) DeleteDocument(_ context.Context, sourceID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents[sourceID], id)
	return nil
}

// ListDocuments returns documents for a source, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context, sourceID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents[sourceID]))
	for _, doc := range s.documents[sourceID] {
		docs = append(docs, cloneDocument(doc))
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// SearchDocuments scores every document of the source against the query terms.
func (s *DocumentStore) SearchDocuments(ctx context.Context, sourceID string,
	query domain.DocumentQuery) ([]domain.DocumentMatch, error) {
	terms := queryTerms(query.Terms)
	if len(terms) == 0 {
		return []domain.DocumentMatch{}, nil
	}

	docs, err := s.ListDocuments(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.DocumentMatch, 0)
	for _, doc := range docs {
		if !typeAllowed(doc.Type, query.Types) {
			continue
		}
		if score := scoreDocument(doc, terms); score > 0 {
			matches = append(matches, domain.DocumentMatch{Document: doc, Score: score})
		}
	}

	// docs is newest first, so a stable sort keeps recency as the tie-break.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if query.Limit > 0 && len(matches) > query.Limit {
		matches = matches[:query.Limit]
	}
	return matches, nil
}

func scoreDocument(doc domain.Document, terms []string) float64 {
	title := wordSet(doc.Title)
	content := wordSet(doc.Content)
	for _, tag := range doc.Tags {
		content[strings.ToLower(tag)] = struct{}{}
	}

	var total float64
	for _, term := range terms {
		if _, ok := title[term]; ok {
			total += titleWeight
		}
		if _, ok := content[term]; ok {
			total += contentWeight
		}
	}
	return total / ((titleWeight + contentWeight) * float64(len(terms)))
}

func queryTerms(raw []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range raw {
		for term := range wordSet(r) {
			if _, dup := seen[term]; !dup {
				seen[term] = struct{}{}
				out = append(out, term)
			}
		}
	}
	return out
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = struct{}{}
	}
	return set
}

func typeAllowed(t domain.ContentType, types []domain.ContentType) bool {
	if len(types) == 0 {
		return true
	}
	for _, allowed := range types {
		if allowed == t {
			return true
		}
	}
	return false
}

func cloneDocument(doc domain.Document) domain.Document {
	if doc.Tags != nil {
		doc.Tags = append([]string(nil), doc.Tags...)
	}
	if doc.Fields != nil {
		fields := make(map[string]string, len(doc.Fields))
		for k, v := range doc.Fields {
			fields[k] = v
		}
		doc.Fields = fields
	}
	if doc.Quality != nil {
		q := *doc.Quality
		doc.Quality = &q
	}
	return doc
}
