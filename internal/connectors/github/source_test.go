package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

const codeSearchBody = `{
  "total_count": 2,
  "incomplete_results": false,
  "items": [
    {
      "name": "consumer.go",
      "path": "internal/kafka/consumer.go",
      "html_url": "https://github.com/acme/api/blob/main/internal/kafka/consumer.go",
      "repository": {"full_name": "acme/api"},
      "text_matches": [
        {"fragment": "func NewConsumer(group string) *Consumer"},
        {"fragment": "// rebalance the kafka consumer group"}
      ]
    },
    {
      "name": "README.md",
      "path": "README.md",
      "html_url": "https://github.com/acme/ml/blob/main/README.md",
      "repository": {"full_name": "acme/ml"},
      "text_matches": []
    }
  ]
}`

type searchServer struct {
	*httptest.Server
	mu         sync.Mutex
	lastQuery  string
	lastAccept string
	lastAuth   string
	calls      int
}

func (s *searchServer) last() (query, accept, auth string, calls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery, s.lastAccept, s.lastAuth, s.calls
}

func newSearchServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *searchServer {
	t.Helper()
	s := &searchServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.lastQuery = r.URL.Query().Get("q")
		s.lastAccept = r.Header.Get("Accept")
		s.lastAuth = r.Header.Get("Authorization")
		s.calls++
		s.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestSource(t *testing.T, srv *searchServer, cfg Config) *Source {
	t.Helper()
	client, err := NewClientWithHTTPClient(srv.Client(), srv.URL)
	require.NoError(t, err)
	client.rateLimiter = NewRateLimiterWithRate(rate.Inf, 1)
	return New(client, cfg, nil)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/search/code" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderRateRemaining, "9")
	fmt.Fprint(w, codeSearchBody)
}

func TestSource_Identity(t *testing.T) {
	s := New(nil, Config{Chunks: true}, nil)
	var _ driven.SourcePort = s

	assert.Equal(t, domain.SourceGitHub, s.ID())
	assert.Equal(t, []domain.ContentType{domain.ContentTypeCodeFile, domain.ContentTypeCodeChunk}, s.ContentTypes())
	assert.Equal(t, []domain.ContentType{domain.ContentTypeCodeFile}, New(nil, Config{}, nil).ContentTypes())
}

func TestSource_SearchMapsFilesAndChunks(t *testing.T) {
	srv := newSearchServer(t, okHandler)
	s := newTestSource(t, srv, Config{Qualifier: "org:acme", Chunks: true})

	results, err := s.Search(context.Background(), domain.SourceQuery{
		Text:     "kafka consumer group",
		Keywords: []string{"kafka", "consumer"},
		Limit:    10,
	})

	require.NoError(t, err)
	query, accept, _, _ := srv.last()
	assert.Equal(t, "kafka consumer org:acme", query)
	assert.Contains(t, accept, "text-match")
	require.Len(t, results, 4)

	file := results[0]
	assert.Equal(t, "acme/api/internal/kafka/consumer.go", file.ID)
	assert.Equal(t, domain.ContentTypeCodeFile, file.Type)
	assert.Equal(t, "internal/kafka/consumer.go", file.Title)
	assert.Equal(t, "func NewConsumer(group string) *Consumer", file.Preview)
	assert.Equal(t, domain.SourceGitHub, file.Metadata.Source)
	assert.Equal(t, "Go", file.Metadata.Field(domain.FieldLanguage))
	assert.Equal(t, "acme/api", file.Metadata.Field(domain.FieldRepository))
	assert.Equal(t, "internal/kafka/consumer.go", file.Metadata.Field(domain.FieldFilePath))
	assert.InDelta(t, 1.0, file.Score.Relevance, 1e-9)
	require.NotNil(t, file.Score.TextMatch)
	assert.InDelta(t, 1.0, *file.Score.TextMatch, 1e-9)

	chunk := results[1]
	assert.Equal(t, "acme/api/internal/kafka/consumer.go#0", chunk.ID)
	assert.Equal(t, domain.ContentTypeCodeChunk, chunk.Type)
	assert.InDelta(t, 0.9, chunk.Score.Relevance, 1e-9)
	assert.Equal(t, "acme/api/internal/kafka/consumer.go#1", results[2].ID)

	readme := results[3]
	assert.Equal(t, "acme/ml/README.md", readme.ID)
	assert.Equal(t, "Markdown", readme.Metadata.Field(domain.FieldLanguage))
	assert.InDelta(t, 0.75, readme.Score.Relevance, 1e-9)
	assert.Nil(t, readme.Score.TextMatch, "no fragments, no text match signal")
}

func TestSource_SearchRespectsTypeFilterAndLimit(t *testing.T) {
	srv := newSearchServer(t, okHandler)
	s := newTestSource(t, srv, Config{Chunks: true})

	chunks, err := s.Search(context.Background(), domain.SourceQuery{
		Text:    "kafka",
		Filters: domain.SearchFilters{ContentTypes: []domain.ContentType{domain.ContentTypeCodeChunk}},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for _, r := range chunks {
		assert.Equal(t, domain.ContentTypeCodeChunk, r.Type)
	}

	limited, err := s.Search(context.Background(), domain.SourceQuery{Text: "kafka", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSource_EmptyQuerySkipsRequest(t *testing.T) {
	srv := newSearchServer(t, okHandler)
	s := newTestSource(t, srv, Config{})

	results, err := s.Search(context.Background(), domain.SourceQuery{Text: "   "})

	require.NoError(t, err)
	assert.Empty(t, results)
	_, _, _, calls := srv.last()
	assert.Zero(t, calls)
}

func TestSource_SearchRateLimited(t *testing.T) {
	reset := time.Now().Add(time.Minute).Unix()
	srv := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRateRemaining, "0")
		w.Header().Set(HeaderRateLimit, "10")
		w.Header().Set(HeaderRateReset, strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	})
	s := newTestSource(t, srv, Config{})

	_, err := s.Search(context.Background(), domain.SourceQuery{Text: "kafka"})

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	assert.Equal(t, 0, s.client.RateLimiter().Remaining())

	// The next call fails fast without reaching the server.
	_, err = s.Search(context.Background(), domain.SourceQuery{Text: "kafka"})
	assert.True(t, IsRateLimited(err))
	_, _, _, calls := srv.last()
	assert.Equal(t, 1, calls)
}

func TestSource_SearchUnauthorized(t *testing.T) {
	srv := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	})
	s := newTestSource(t, srv, Config{})

	_, err := s.Search(context.Background(), domain.SourceQuery{Text: "kafka"})

	assert.True(t, IsUnauthorized(err))
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})

	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewClient_SendsToken(t *testing.T) {
	srv := newSearchServer(t, okHandler)
	client, err := NewClient(context.Background(), Config{Token: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	client.rateLimiter = NewRateLimiterWithRate(rate.Inf, 1)

	_, err = client.SearchCode(context.Background(), "kafka", 0)

	require.NoError(t, err)
	_, _, auth, _ := srv.last()
	assert.Equal(t, "Bearer secret", auth)
}

func TestKeywordCoverage(t *testing.T) {
	tm, ok := keywordCoverage([]string{"Kafka consumer"}, []string{"kafka", "lag"})
	assert.True(t, ok)
	assert.InDelta(t, 0.5, tm, 1e-9)

	_, ok = keywordCoverage(nil, []string{"kafka"})
	assert.False(t, ok)
}
