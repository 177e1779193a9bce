package resilient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/four-robots/unisearch/internal/adapters/driven/storage/memory"
	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

type stubSource struct {
	calls int
	err   error
}

func (s *stubSource) ID() string { return "stub" }

func (s *stubSource) ContentTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentTypeWikiPage}
}

func (s *stubSource) Search(context.Context, domain.SourceQuery) ([]domain.SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []domain.SearchResult{{ID: "1", Metadata: domain.ResultMetadata{Source: "stub"}}}, nil
}

func TestSource_Delegates(t *testing.T) {
	inner := &stubSource{}
	s := Wrap(inner, Settings{}, nil)

	results, err := s.Search(context.Background(), domain.SourceQuery{})

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "stub", s.ID())
	assert.Equal(t, inner.ContentTypes(), s.ContentTypes())
	assert.Equal(t, "closed", s.State())
	assert.Same(t, inner, s.Unwrap())
}

func TestSource_OpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("boom")
	inner := &stubSource{err: boom}
	s := Wrap(inner, Settings{MaxFailures: 2, OpenTimeout: time.Hour}, nil)

	for i := 0; i < 2; i++ {
		_, err := s.Search(context.Background(), domain.SourceQuery{})
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, "open", s.State())

	_, err := s.Search(context.Background(), domain.SourceQuery{})

	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "stub")
	assert.Equal(t, 2, inner.calls)
}

func TestSource_HalfOpenRecovers(t *testing.T) {
	inner := &stubSource{err: errors.New("boom")}
	s := Wrap(inner, Settings{MaxFailures: 1, OpenTimeout: 10 * time.Millisecond}, nil)

	_, _ = s.Search(context.Background(), domain.SourceQuery{})
	require.Equal(t, "open", s.State())

	inner.err = nil
	time.Sleep(20 * time.Millisecond)
	_, err := s.Search(context.Background(), domain.SourceQuery{})

	require.NoError(t, err)
	assert.Equal(t, "closed", s.State())
}

func TestSource_CancellationDoesNotTrip(t *testing.T) {
	inner := &stubSource{err: context.Canceled}
	s := Wrap(inner, Settings{MaxFailures: 1}, nil)

	for i := 0; i < 3; i++ {
		_, err := s.Search(context.Background(), domain.SourceQuery{})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", s.State())
}

func TestWrapAll(t *testing.T) {
	ports := WrapAll([]driven.SourcePort{&stubSource{}, &stubSource{}}, Settings{}, nil)

	require.Len(t, ports, 2)
	for _, p := range ports {
		assert.IsType(t, &Source{}, p)
	}
}

func TestParseSettings(t *testing.T) {
	assert.Equal(t, Settings{MaxFailures: DefaultMaxFailures, OpenTimeout: DefaultOpenTimeout},
		ParseSettings(memory.NewConfigStore()))

	s := ParseSettings(memory.NewConfigStoreFrom(map[string]any{
		KeyMaxFailures: int64(3),
		KeyOpenSeconds: int64(10),
	}))
	assert.Equal(t, Settings{MaxFailures: 3, OpenTimeout: 10 * time.Second}, s)
}
