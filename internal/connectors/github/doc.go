// Package github implements the code search backend.
//
// Each search issues one request to the GitHub code search API with text-match
// fragments enabled. A hit becomes a code_file result (path, repository and
// language in metadata) and, when chunking is on, one code_chunk result per
// matched fragment.
//
// # Authentication
//
// Code search requires a token. It is read from sources.github.token or the
// GITHUB_TOKEN environment variable.
//
// # Rate Limiting
//
// Code search allows only a few requests per minute. The client throttles with
// a token bucket and tracks the X-RateLimit-* headers; once GitHub reports the
// quota exhausted, searches fail fast with a RateLimitError (matching
// domain.ErrRateLimited) instead of waiting for the reset.
//
// # Relevance
//
// The API returns hits in best-match order without a score, so native relevance
// decays from 1.0 with rank. TextMatch is the share of query keywords present in
// the returned fragments.
package github
