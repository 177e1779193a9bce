package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/four-robots/unisearch/internal/core/domain"
)

type fakeService struct {
	mu       sync.Mutex
	calls    int
	bodies   []string
	auth     string
	statuses []int
	reply    string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls++
	f.bodies = append(f.bodies, string(body))
	f.auth = r.Header.Get("Authorization")
	status := http.StatusOK
	if len(f.statuses) > 0 {
		status, f.statuses = f.statuses[0], f.statuses[1:]
	}
	f.mu.Unlock()

	if r.URL.Path != "/search" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if status != http.StatusOK {
		http.Error(w, "boom", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, f.reply)
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const twoHits = `{"results":[
	{"id":"p1","kind":"page","title":"Deploy guide","content":"How we deploy.","url":"https://docs.example.com/deploy",
	 "score":0.8,"quality":0.9,"domain":"docs.example.com","created_at":"2026-01-02T03:04:05Z"},
	{"id":"p1#2","kind":"chunk","content":"Run make deploy.","url":"https://docs.example.com/deploy#step-2",
	 "score":1.7,"page_id":"p1"},
	{"id":"","kind":"page","title":"dropped"}
]}`

func newTestSource(t *testing.T, svc *fakeService, cfg Config) *Source {
	t.Helper()
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	cfg.URL = srv.URL
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 1000
	}
	client, err := NewClient(cfg, srv.Client())
	require.NoError(t, err)
	client.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return NewSource(client, nil)
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingURL)
}

func TestSource_Metadata(t *testing.T) {
	s := NewSource(nil, nil)

	assert.Equal(t, domain.SourceScraper, s.ID())
	assert.Equal(t, []domain.ContentType{domain.ContentTypeScrapedPage, domain.ContentTypeScrapedChunk},
		s.ContentTypes())
}

func TestSource_SearchMapsHits(t *testing.T) {
	svc := &fakeService{reply: twoHits}
	s := newTestSource(t, svc, Config{APIKey: "secret"})

	results, err := s.Search(context.Background(), domain.SourceQuery{
		Text: "deploy", Keywords: []string{"deploy"}, Limit: 10,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)

	page := results[0]
	assert.Equal(t, "p1", page.ID)
	assert.Equal(t, domain.ContentTypeScrapedPage, page.Type)
	assert.Equal(t, "How we deploy.", page.Preview)
	assert.Equal(t, 0.8, page.Score.Relevance)
	require.NotNil(t, page.Score.QualityScore)
	assert.Equal(t, 0.9, *page.Score.QualityScore)
	assert.Equal(t, "docs.example.com", page.Metadata.Field(FieldDomain))
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), page.Metadata.CreatedAt.UTC())
	assert.Equal(t, domain.SourceScraper, page.Metadata.Source)

	chunk := results[1]
	assert.Equal(t, domain.ContentTypeScrapedChunk, chunk.Type)
	assert.Equal(t, "https://docs.example.com/deploy#step-2", chunk.Title)
	assert.Equal(t, 1.0, chunk.Score.Relevance)
	assert.Equal(t, "p1", chunk.Metadata.Field(FieldPageID))

	assert.Equal(t, "Bearer secret", svc.auth)
	require.Len(t, svc.bodies, 1)
	assert.JSONEq(t,
		`{"query":"deploy","keywords":["deploy"],"limit":10,"content_types":["scraped_page","scraped_chunk"]}`,
		svc.bodies[0])
}

func TestSource_SearchNarrowsToFilteredTypes(t *testing.T) {
	svc := &fakeService{reply: twoHits}
	s := newTestSource(t, svc, Config{})

	results, err := s.Search(context.Background(), domain.SourceQuery{
		Text:    "deploy",
		Filters: domain.SearchFilters{ContentTypes: []domain.ContentType{domain.ContentTypeScrapedChunk}},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ContentTypeScrapedChunk, results[0].Type)
	assert.Contains(t, svc.bodies[0], `"content_types":["scraped_chunk"]`)
}

func TestSource_SearchSkipsCallWhenFilterExcludesAll(t *testing.T) {
	svc := &fakeService{reply: twoHits}
	s := newTestSource(t, svc, Config{})

	results, err := s.Search(context.Background(), domain.SourceQuery{
		Text:    "deploy",
		Filters: domain.SearchFilters{ContentTypes: []domain.ContentType{domain.ContentTypeWikiPage}},
	})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, svc.callCount())
}

func TestSource_SearchRetriesTransientFailures(t *testing.T) {
	svc := &fakeService{reply: twoHits, statuses: []int{http.StatusBadGateway, http.StatusTooManyRequests}}
	s := newTestSource(t, svc, Config{MaxRetries: 2})

	results, err := s.Search(context.Background(), domain.SourceQuery{Text: "deploy"})

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 3, svc.callCount())
}

func TestSource_SearchGivesUpAfterMaxRetries(t *testing.T) {
	svc := &fakeService{statuses: []int{500, 500, 500, 500}}
	s := newTestSource(t, svc, Config{MaxRetries: 1})

	_, err := s.Search(context.Background(), domain.SourceQuery{Text: "deploy"})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, 2, svc.callCount())
}

func TestSource_SearchDoesNotRetryClientErrors(t *testing.T) {
	svc := &fakeService{statuses: []int{http.StatusBadRequest}}
	s := newTestSource(t, svc, Config{MaxRetries: 3})

	_, err := s.Search(context.Background(), domain.SourceQuery{Text: "deploy"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400: boom")
	assert.Equal(t, 1, svc.callCount())
}

func TestSource_SearchRejectsMalformedJSON(t *testing.T) {
	svc := &fakeService{reply: `{"results":`}
	s := newTestSource(t, svc, Config{MaxRetries: 3})

	_, err := s.Search(context.Background(), domain.SourceQuery{Text: "deploy"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.Equal(t, 1, svc.callCount())
}

func TestSource_SearchHonoursCancellation(t *testing.T) {
	svc := &fakeService{reply: twoHits}
	s := newTestSource(t, svc, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, domain.SourceQuery{Text: "deploy"})

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStatusError_RateLimited(t *testing.T) {
	assert.ErrorIs(t, &StatusError{StatusCode: http.StatusTooManyRequests}, domain.ErrRateLimited)
	assert.NotErrorIs(t, &StatusError{StatusCode: http.StatusBadGateway}, domain.ErrRateLimited)
}
