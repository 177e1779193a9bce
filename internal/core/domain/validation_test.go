package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequest_Validate_AppliesDefaults(t *testing.T) {
	req := SearchRequest{Query: "  deploy guide  "}

	out, err := req.Validate(DefaultSearchConfig())

	require.NoError(t, err)
	assert.Equal(t, "deploy guide", out.Query)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, DefaultLimit, out.Limit)
	// The input is left untouched.
	assert.Equal(t, "  deploy guide  ", req.Query)
}

func TestSearchRequest_Validate_Rejections(t *testing.T) {
	quality := 1.5
	tests := []struct {
		name  string
		req   SearchRequest
		field string
	}{
		{"empty query", SearchRequest{Query: ""}, "query"},
		{"whitespace query", SearchRequest{Query: " \t\n "}, "query"},
		{"query too long", SearchRequest{Query: strings.Repeat("a", DefaultMaxQueryLength+1)}, "query"},
		{"negative page", SearchRequest{Query: "q", Page: -1}, "page"},
		{"negative limit", SearchRequest{Query: "q", Limit: -5}, "limit"},
		{"limit over max", SearchRequest{Query: "q", Limit: DefaultMaxLimit + 1}, "limit"},
		{"negative offset", SearchRequest{Query: "q", Offset: -1}, "offset"},
		{"unknown type", SearchRequest{Query: "q", Filters: SearchFilters{
			ContentTypes: []ContentType{"spreadsheet"},
		}}, "content type"},
		{"inverted date range", SearchRequest{Query: "q", Filters: SearchFilters{
			DateRange: &DateRange{From: time.Now(), To: time.Now().Add(-time.Hour)},
		}}, "date range"},
		{"quality out of range", SearchRequest{Query: "q", Filters: SearchFilters{MinQuality: &quality}}, "min quality"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Validate(DefaultSearchConfig())

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSearchRequest_Validate_QueryLengthCountsRunes(t *testing.T) {
	cfg := DefaultSearchConfig()
	cfg.MaxQueryLength = 3

	_, err := SearchRequest{Query: "äöü"}.Validate(cfg)

	assert.NoError(t, err)
}

func TestSearchFilters_AllowsAnyType(t *testing.T) {
	f := SearchFilters{ContentTypes: []ContentType{ContentTypeWikiPage}}

	assert.True(t, f.AllowsAnyType([]ContentType{ContentTypeCodeFile, ContentTypeWikiPage}))
	assert.False(t, f.AllowsAnyType([]ContentType{ContentTypeCodeFile}))
	assert.True(t, SearchFilters{}.AllowsAnyType([]ContentType{ContentTypeCodeFile}))
}

func TestDateRange_Contains(t *testing.T) {
	now := time.Now()
	r := DateRange{From: now.Add(-time.Hour)}

	assert.True(t, r.Contains(now))
	assert.False(t, r.Contains(now.Add(-2*time.Hour)))
}

func TestParseContentType(t *testing.T) {
	ct, err := ParseContentType("Wiki-Page")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeWikiPage, ct)

	_, err = ParseContentType("slides")
	assert.True(t, IsValidationError(err))
}

func TestCacheStats_ComputeHitRate(t *testing.T) {
	s := CacheStats{Hits: 3, Misses: 1}
	s.ComputeHitRate()
	assert.InDelta(t, 0.75, s.HitRate, 1e-9)

	empty := CacheStats{}
	empty.ComputeHitRate()
	assert.Zero(t, empty.HitRate)
}
