// Package domain defines the core business entities for versesearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Verse: A single verse in Arabic, English and Bangla
//   - TextField: The closed set of searchable text fields
//   - IndexSchema: Field types, analyzers and sub-fields of the verse index
//   - BulkOutcome: The itemised result of a bulk ingestion
//   - SearchQuery / SuggestQuery: Backend-neutral compiled queries
//   - SearchResult / Suggestion: Projected responses
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
