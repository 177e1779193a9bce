package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/four-robots/unisearch/internal/core/domain"
)

type mockSearchService struct {
	response  domain.UnifiedResponse
	lastReq   domain.SearchRequest
	lastUser  string
	sources   []domain.SourceInfo
	cache     domain.CacheStats
	analytics domain.AnalyticsStats
	cleared   bool
	err       error
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest,
	userID, _ string) (domain.UnifiedResponse, error) {
	m.lastReq = req
	m.lastUser = userID
	return m.response, m.err
}

func (m *mockSearchService) Sources() []domain.SourceInfo { return m.sources }

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

type mockDocumentService struct {
	documents []domain.Document
	added     domain.Document
	removed   string
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
	return &doc, nil
}

func (m *mockDocumentService) Get(_ context.Context, _, _ string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Remove(_ context.Context, sourceID, id string) error {
	if m.err == nil {
		m.removed = sourceID + "/" + id
	}
	return m.err
}

// useTestApp installs a as the wired app for the duration of the test and resets flag state.
func useTestApp(t *testing.T, a *App) {
	t.Helper()
	resetFlags()
	app, ownsApp = a, false
	t.Cleanup(func() {
		app, ownsApp = nil, false
		resetFlags()
	})
}

// resetFlags restores flag variables to their defaults between executions.
func resetFlags() {
	searchFlags.limit = 0
	searchFlags.page = 1
	searchFlags.offset = 0
	searchFlags.types = nil
	searchFlags.since = ""
	searchFlags.until = ""
	searchFlags.minQuality = -1
	searchFlags.semantic = false
	searchFlags.fuzzy = false
	searchFlags.highlights = false
	searchFlags.noPreview = false
	searchFlags.json = false
	searchFlags.user = ""
	searchFlags.session = ""

	indexFlags.source = ""
	indexFlags.id = ""
	indexFlags.title = ""
	indexFlags.uri = ""
	indexFlags.tags = nil
	indexFlags.file = ""
	indexFlags.json = false

	statsJSON = false
	cacheJSON = false
	sourcesJSON = false
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func requireContainsAll(t *testing.T, out string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		require.Contains(t, out, p)
	}
}
