package services

import (
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/logger"
)

// ResultDeduplicator collapses near-duplicate results reported by different backends.
//
// Clustering is single-linkage over qualifying pairs visited in discovery
// order. A pair with one clustered member pulls the other into that cluster;
// a pair whose members sit in different clusters merges the two. Clusters are
// therefore the connected components of the similarity graph, and two results
// with the same non-empty URL never both survive.
type ResultDeduplicator struct {
	log *zap.Logger
}

// NewResultDeduplicator creates a deduplicator.
func NewResultDeduplicator(log *zap.Logger) *ResultDeduplicator {
	return &ResultDeduplicator{log: logger.OrNop(log)}
}

// dedupFeatures caches the tokenised fields of one result.
type dedupFeatures struct {
	title    map[string]struct{}
	preview  map[string]struct{}
	filePath map[string]struct{}
	url      string
}

func featuresOf(r domain.SearchResult) dedupFeatures {
	return dedupFeatures{
		title:    tokenSet(r.Title),
		preview:  tokenSet(r.Preview),
		filePath: tokenSet(r.Metadata.Field(domain.FieldFilePath)),
		url:      r.URL,
	}
}

// similarity is the maximum of title, preview and file-path token-Jaccard,
// or 1.0 for equal non-empty URLs.
func similarity(a, b dedupFeatures) float64 {
	if a.url != "" && a.url == b.url {
		return 1.0
	}
	best := jaccard(a.title, b.title)
	if s := jaccard(a.preview, b.preview); s > best {
		best = s
	}
	if s := jaccard(a.filePath, b.filePath); s > best {
		best = s
	}
	return best
}

// Deduplicate returns a new slice in which every cluster of results scoring
// at least threshold against each other is replaced by its highest-relevance
// member, the earliest on ties. Survivors keep their input order.
func (d *ResultDeduplicator) Deduplicate(results []domain.SearchResult, threshold float64) []domain.SearchResult {
	if len(results) < 2 {
		return append([]domain.SearchResult(nil), results...)
	}

	features := make([]dedupFeatures, len(results))
	for i := range results {
		features[i] = featuresOf(results[i])
	}

	clusterOf := make(map[int]int)
	var clusters [][]int

	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if similarity(features[i], features[j]) < threshold {
				continue
			}

			ci, iIn := clusterOf[i]
			cj, jIn := clusterOf[j]
			switch {
			case !iIn && !jIn:
				clusters = append(clusters, []int{i, j})
				clusterOf[i] = len(clusters) - 1
				clusterOf[j] = len(clusters) - 1
			case iIn && !jIn:
				clusters[ci] = append(clusters[ci], j)
				clusterOf[j] = ci
			case !iIn && jIn:
				clusters[cj] = append(clusters[cj], i)
				clusterOf[i] = cj
			case ci != cj:
				for _, m := range clusters[cj] {
					clusterOf[m] = ci
				}
				clusters[ci] = append(clusters[ci], clusters[cj]...)
				clusters[cj] = nil
			}
		}
	}

	if len(clusters) == 0 {
		return append([]domain.SearchResult(nil), results...)
	}

	representative := make([]int, len(clusters))
	merged := 0
	for c, members := range clusters {
		if len(members) == 0 {
			merged++
			continue
		}
		best := members[0]
		for _, m := range members[1:] {
			rm, rb := results[m].Score.Relevance, results[best].Score.Relevance
			if rm > rb || (rm == rb && m < best) {
				best = m
			}
		}
		representative[c] = best
	}

	out := make([]domain.SearchResult, 0, len(results))
	for i := range results {
		c, clustered := clusterOf[i]
		if !clustered || representative[c] == i {
			out = append(out, results[i])
		}
	}

	d.log.Debug("deduplicated results",
		zap.Int("input", len(results)),
		zap.Int("clusters", len(clusters)-merged),
		zap.Int("output", len(out)))

	return out
}
