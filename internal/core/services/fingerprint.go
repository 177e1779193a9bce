package services

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/four-robots/unisearch/internal/core/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fingerprintInput is the canonical form hashed into a cache key.
// Content types are sorted so filter order does not split the cache.
type fingerprintInput struct {
	Query        string               `json:"q"`
	ContentTypes []string             `json:"ct,omitempty"`
	DateRange    *domain.DateRange    `json:"dr,omitempty"`
	MinQuality   *float64             `json:"mq,omitempty"`
	Page         int                  `json:"p"`
	Limit        int                  `json:"l"`
	Offset       int                  `json:"o,omitempty"`
	Options      domain.SearchOptions `json:"opt"`
}

// Fingerprint returns a stable cache key for a validated request.
func Fingerprint(req domain.SearchRequest) string {
	in := fingerprintInput{
		Query:      normalizeText(req.Query),
		DateRange:  req.Filters.DateRange,
		MinQuality: req.Filters.MinQuality,
		Page:       req.Page,
		Limit:      req.Limit,
		Offset:     req.Offset,
		Options:    req.Options,
	}
	for _, ct := range req.Filters.ContentTypes {
		in.ContentTypes = append(in.ContentTypes, string(ct))
	}
	sort.Strings(in.ContentTypes)

	// Marshalling a struct of plain fields cannot fail.
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(sum[:])
}
