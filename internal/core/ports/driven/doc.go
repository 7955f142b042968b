// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SearchBackend: The document-search backend (Elasticsearch, or the
//     embedded bleve index for offline use). Owns storage, tokenisation
//     and ranking; core only composes requests and reads responses.
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - IngestionHistory: Audit log of ingestion runs. Without it, runs are
//     only logged.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driving package
package driven
