// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SourcePort: One content backend (memory, kanban, wiki, scraper, github)
//   - QueryUnderstanding: Turns a raw request into a ProcessedQuery
//   - ConfigStore: Application configuration
//   - DocumentStore: Storage behind the local sources
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - CacheGateway: Read-through response cache. Without it every search fans out.
//   - AnalyticsGateway: Best-effort search telemetry.
//   - FacetGenerator: Dynamic facets. Without it responses carry no facets.
//   - SearchMetrics: Latency and outcome instrumentation.
//   - EmbeddingService: Semantic similarity for local sources.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
