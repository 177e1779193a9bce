// Package facets discovers facets over a merged result set from the
// metadata the results actually carry.
package facets

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.FacetGenerator = (*Generator)(nil)

// DefaultMaxValues caps the values listed per facet.
const DefaultMaxValues = 10

// Facet names.
const (
	FacetType       = "type"
	FacetSource     = "source"
	FacetTag        = "tag"
	FacetLanguage   = "language"
	FacetRepository = "repository"
)

// dimension extracts the facet values of one result.
type dimension struct {
	name   string
	label  string
	values func(r domain.SearchResult) []string
}

var dimensions = []dimension{
	{FacetType, "Content type", func(r domain.SearchResult) []string { return []string{string(r.Type)} }},
	{FacetSource, "Source", func(r domain.SearchResult) []string { return []string{r.Metadata.Source} }},
	{FacetTag, "Tag", func(r domain.SearchResult) []string { return r.Metadata.Tags }},
	{FacetLanguage, "Language", field(domain.FieldLanguage)},
	{FacetRepository, "Repository", field(domain.FieldRepository)},
}

func field(name string) func(domain.SearchResult) []string {
	return func(r domain.SearchResult) []string {
		return []string{r.Metadata.Field(name)}
	}
}

// Generator builds facets for type, source, tag, language and repository.
// A facet whose values would not narrow the set (fewer than two distinct
// values) is left out.
type Generator struct {
	log *zap.Logger
}

// NewGenerator creates a facet generator.
func NewGenerator(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{log: log.With(zap.String("module", "facets"))}
}

// Generate counts values per dimension.
func (g *Generator) Generate(
	ctx context.Context,
	results []domain.SearchResult,
	_ domain.ProcessedQuery,
	opts domain.FacetOptions,
) (*domain.FacetCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	maxValues := opts.MaxValues
	if maxValues <= 0 {
		maxValues = DefaultMaxValues
	}
	minCount := opts.MinCount
	if minCount < 1 {
		minCount = 1
	}

	fc := &domain.FacetCollection{Facets: []domain.Facet{}}
	for _, d := range dimensions {
		values := count(results, d, minCount)
		if len(values) < 2 {
			continue
		}
		if len(values) > maxValues {
			values = values[:maxValues]
		}
		fc.Facets = append(fc.Facets, domain.Facet{Name: d.name, Label: d.label, Values: values})
	}
	g.log.Debug("facets generated", zap.Int("results", len(results)), zap.Int("facets", len(fc.Facets)))
	return fc, nil
}

// count tallies non-empty values, each counted once per result, sorted by
// count then value.
func count(results []domain.SearchResult, d dimension, minCount int) []domain.FacetValue {
	counts := make(map[string]int)
	for _, r := range results {
		seen := make(map[string]struct{})
		for _, v := range d.values(r) {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			counts[v]++
		}
	}

	values := make([]domain.FacetValue, 0, len(counts))
	for v, n := range counts {
		if n >= minCount {
			values = append(values, domain.FacetValue{Value: v, Count: n})
		}
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
	return values
}
