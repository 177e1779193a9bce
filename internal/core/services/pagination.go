package services

import "github.com/four-robots/unisearch/internal/core/domain"

// pageStart returns the effective slice start: offset when non-zero, else (page-1)*limit.
func pageStart(page, limit, offset int) int {
	if offset > 0 {
		return offset
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// Paginate returns the requested page of an already merged and ranked result set.
// It never returns more than limit items.
func Paginate(results []domain.SearchResult, page, limit, offset int) []domain.SearchResult {
	if limit <= 0 {
		return []domain.SearchResult{}
	}

	start := pageStart(page, limit, offset)
	if start >= len(results) {
		return []domain.SearchResult{}
	}

	end := start + limit
	if end > len(results) {
		end = len(results)
	}

	return append([]domain.SearchResult(nil), results[start:end]...)
}

// NewPageInfo builds the pagination echo for a response.
//
// TotalPages, HasNext and HasPrev are derived from page even when a non-zero
// offset selected the slice, so with offset=40 and page=1 HasPrev is false.
// Offset always reports where the returned slice starts.
func NewPageInfo(total, page, limit, offset int) domain.PageInfo {
	if page < 1 {
		page = 1
	}
	info := domain.PageInfo{
		Page:   page,
		Limit:  limit,
		Offset: pageStart(page, limit, offset),
	}
	if limit > 0 {
		info.TotalPages = (total + limit - 1) / limit
	}
	info.HasNext = page < info.TotalPages
	info.HasPrev = page > 1
	return info
}
