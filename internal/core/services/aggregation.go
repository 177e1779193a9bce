package services

import (
	"sort"
	"time"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// maxTopTags caps Aggregations.TopTags.
const maxTopTags = 10

// AggregationBuilder computes summary statistics over a result set.
type AggregationBuilder struct {
	now func() time.Time
}

// NewAggregationBuilder creates a builder. A nil clock means time.Now.
func NewAggregationBuilder(now func() time.Time) *AggregationBuilder {
	if now == nil {
		now = time.Now
	}
	return &AggregationBuilder{now: now}
}

// Aggregate counts results by type, creation age, tag, language and repository.
// It never returns nil maps or slices for ByType and TopTags.
func (b *AggregationBuilder) Aggregate(results []domain.SearchResult) domain.Aggregations {
	agg := domain.EmptyAggregations()
	now := b.now()

	tags := newCounter()
	languages := newCounter()
	repositories := newCounter()

	for i := range results {
		r := &results[i]

		agg.ByType[r.Type]++

		created := r.Metadata.CreatedAt
		switch age := now.Sub(created); {
		case created.IsZero():
			agg.ByDate.Older++
		case age <= 24*time.Hour:
			agg.ByDate.Last24h++
		case age <= 7*24*time.Hour:
			agg.ByDate.Last7d++
		case age <= 30*24*time.Hour:
			agg.ByDate.Last30d++
		default:
			agg.ByDate.Older++
		}

		for _, tag := range r.Metadata.Tags {
			if tag != "" {
				tags.add(tag)
			}
		}
		if lang := r.Metadata.Field(domain.FieldLanguage); lang != "" {
			languages.add(lang)
		}
		if repo := r.Metadata.Field(domain.FieldRepository); repo != "" {
			repositories.add(repo)
		}
	}

	for _, e := range tags.top(maxTopTags) {
		agg.TopTags = append(agg.TopTags, domain.TagCount{Tag: e.name, Count: e.count})
	}
	if languages.len() > 0 {
		for _, e := range languages.top(0) {
			agg.Languages = append(agg.Languages, domain.NamedCount{Name: e.name, Count: e.count})
		}
	}
	if repositories.len() > 0 {
		for _, e := range repositories.top(0) {
			agg.Repositories = append(agg.Repositories, domain.NamedCount{Name: e.name, Count: e.count})
		}
	}

	return agg
}

type countEntry struct {
	name  string
	count int
}

// counter counts occurrences and remembers first-seen order for tie-breaks.
type counter struct {
	index   map[string]int
	entries []countEntry
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(name string) {
	if i, ok := c.index[name]; ok {
		c.entries[i].count++
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, countEntry{name: name, count: 1})
}

func (c *counter) len() int {
	return len(c.entries)
}

// top returns entries by count descending, ties in first-seen order.
// n <= 0 returns all entries.
func (c *counter) top(n int) []countEntry {
	sorted := append([]countEntry(nil), c.entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
