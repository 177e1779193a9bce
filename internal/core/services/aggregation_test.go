package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/four-robots/unisearch/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAggregationBuilder_Aggregate_Empty(t *testing.T) {
	agg := NewAggregationBuilder(nil).Aggregate(nil)

	assert.NotNil(t, agg.ByType)
	assert.Empty(t, agg.ByType)
	assert.NotNil(t, agg.TopTags)
	assert.Empty(t, agg.TopTags)
	assert.Equal(t, domain.DateBuckets{}, agg.ByDate)
	assert.Nil(t, agg.Languages)
	assert.Nil(t, agg.Repositories)
}

func TestAggregationBuilder_Aggregate_ByType(t *testing.T) {
	results := []domain.SearchResult{
		makeResult("1", "wiki", domain.ContentTypeWikiPage, "a", 0.5),
		makeResult("2", "wiki", domain.ContentTypeWikiPage, "b", 0.5),
		makeResult("3", "kanban", domain.ContentTypeKanbanCard, "c", 0.5),
	}

	agg := NewAggregationBuilder(nil).Aggregate(results)

	assert.Equal(t, map[domain.ContentType]int{
		domain.ContentTypeWikiPage:   2,
		domain.ContentTypeKanbanCard: 1,
	}, agg.ByType)
}

func TestAggregationBuilder_Aggregate_ByDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := []time.Time{
		now.Add(-1 * time.Hour),
		now.Add(-48 * time.Hour),
		now.Add(-10 * 24 * time.Hour),
		now.Add(-90 * 24 * time.Hour),
		{},
	}
	results := make([]domain.SearchResult, len(created))
	for i, c := range created {
		results[i] = makeResult(fmt.Sprint(i), "wiki", domain.ContentTypeWikiPage, "t", 0.5)
		results[i].Metadata.CreatedAt = c
	}

	agg := NewAggregationBuilder(fixedClock(now)).Aggregate(results)

	assert.Equal(t, domain.DateBuckets{Last24h: 1, Last7d: 1, Last30d: 1, Older: 2}, agg.ByDate)
}

func TestAggregationBuilder_Aggregate_TopTags(t *testing.T) {
	tagged := func(tags ...string) domain.SearchResult {
		r := makeResult("x", "wiki", domain.ContentTypeWikiPage, "t", 0.5)
		r.Metadata.Tags = tags
		return r
	}
	results := []domain.SearchResult{
		tagged("ops", "go"),
		tagged("docs", "go"),
		tagged("ops", ""),
		tagged("infra"),
	}

	agg := NewAggregationBuilder(nil).Aggregate(results)

	assert.Equal(t, []domain.TagCount{
		{Tag: "ops", Count: 2},
		{Tag: "go", Count: 2},
		{Tag: "docs", Count: 1},
		{Tag: "infra", Count: 1},
	}, agg.TopTags)
}

func TestAggregationBuilder_Aggregate_TopTagsCapped(t *testing.T) {
	r := makeResult("x", "wiki", domain.ContentTypeWikiPage, "t", 0.5)
	for i := 0; i < 15; i++ {
		r.Metadata.Tags = append(r.Metadata.Tags, fmt.Sprintf("tag-%02d", i))
	}

	agg := NewAggregationBuilder(nil).Aggregate([]domain.SearchResult{r})

	require.Len(t, agg.TopTags, maxTopTags)
	assert.Equal(t, "tag-00", agg.TopTags[0].Tag)
	assert.Equal(t, "tag-09", agg.TopTags[9].Tag)
}

func TestAggregationBuilder_Aggregate_LanguagesAndRepositories(t *testing.T) {
	code := func(lang, repo string) domain.SearchResult {
		r := makeResult("x", "github", domain.ContentTypeCodeFile, "t", 0.5)
		r.Metadata.Fields = map[string]string{domain.FieldLanguage: lang, domain.FieldRepository: repo}
		return r
	}
	results := []domain.SearchResult{
		code("Go", "acme/api"),
		code("Python", "acme/ml"),
		code("Go", "acme/api"),
		makeResult("w", "wiki", domain.ContentTypeWikiPage, "t", 0.5),
	}

	agg := NewAggregationBuilder(nil).Aggregate(results)

	assert.Equal(t, []domain.NamedCount{{Name: "Go", Count: 2}, {Name: "Python", Count: 1}}, agg.Languages)
	assert.Equal(t, []domain.NamedCount{{Name: "acme/api", Count: 2}, {Name: "acme/ml", Count: 1}}, agg.Repositories)
}

func TestAggregationBuilder_Aggregate_SumMatchesInput(t *testing.T) {
	results := []domain.SearchResult{
		makeResult("1", "wiki", domain.ContentTypeWikiPage, "a", 0.5),
		makeResult("2", "memory", domain.ContentTypeMemoryNote, "b", 0.5),
		makeResult("3", "scraper", domain.ContentTypeScrapedChunk, "c", 0.5),
	}

	agg := NewAggregationBuilder(nil).Aggregate(results)

	total := 0
	for _, n := range agg.ByType {
		total += n
	}
	assert.Equal(t, len(results), total)
	b := agg.ByDate
	assert.Equal(t, len(results), b.Last24h+b.Last7d+b.Last30d+b.Older)
}
