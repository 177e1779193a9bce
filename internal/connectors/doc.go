// Package connectors groups the SourcePort implementations that search
// fans out to. Each subpackage adapts one kind of backend:
//
//   - local: memory, kanban and wiki sources over the document store
//   - scraper: a remote scraper service reached over HTTP
//   - github: code search through the GitHub API
//   - resilient: a decorator adding retries and a circuit breaker to any source
//
// Sources are assembled by the composition root in cmd/unisearch.
package connectors
