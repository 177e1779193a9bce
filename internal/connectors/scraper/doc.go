// Package scraper searches the pages and page fragments indexed by an external
// scraper service over its HTTP JSON API.
//
// Requests are throttled with a token bucket and transient failures (network
// errors, 429 and 5xx) are retried with exponential backoff inside the
// deadline the orchestrator gives each source.
package scraper
