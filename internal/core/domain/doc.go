// Package domain defines the core business entities for unisearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchRequest: An immutable, validated search request
//   - SearchResult: A single hit produced by a source backend
//   - SourceOutcome: What one backend produced for one request
//   - UnifiedResponse: The merged, ranked and paginated answer
//   - ProcessedQuery: The output of query understanding
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
