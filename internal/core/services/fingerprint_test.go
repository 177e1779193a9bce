package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/four-robots/unisearch/internal/core/domain"
)

func TestFingerprint_Stable(t *testing.T) {
	a := domain.SearchRequest{
		Query: "Deploy  Guide",
		Filters: domain.SearchFilters{ContentTypes: []domain.ContentType{
			domain.ContentTypeWikiPage, domain.ContentTypeCodeFile,
		}},
		Page:  1,
		Limit: 20,
	}
	b := a
	b.Query = "deploy guide"
	b.Filters.ContentTypes = []domain.ContentType{domain.ContentTypeCodeFile, domain.ContentTypeWikiPage}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Contains(t, Fingerprint(a), "search:")
}

func TestFingerprint_DistinguishesRequests(t *testing.T) {
	base := domain.SearchRequest{Query: "deploy", Page: 1, Limit: 20}

	variants := []domain.SearchRequest{
		{Query: "release", Page: 1, Limit: 20},
		{Query: "deploy", Page: 2, Limit: 20},
		{Query: "deploy", Page: 1, Limit: 10},
		{Query: "deploy", Page: 1, Limit: 20, Offset: 3},
		{Query: "deploy", Page: 1, Limit: 20, Options: domain.SearchOptions{IncludePreview: true}},
		{Query: "deploy", Page: 1, Limit: 20, Filters: domain.SearchFilters{MinQuality: ptr(0.5)}},
		{Query: "deploy", Page: 1, Limit: 20, Filters: domain.SearchFilters{
			DateRange: &domain.DateRange{From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		}},
	}

	seen := map[string]bool{Fingerprint(base): true}
	for _, v := range variants {
		fp := Fingerprint(v)
		assert.False(t, seen[fp], "collision for %+v", v)
		seen[fp] = true
	}
}
