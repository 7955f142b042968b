package driven

import (
	"context"
	"encoding/json"
	"time"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// SearchBackend is the remote document-search service consumed by core.
// Implementations attach backend diagnostics to errors as *domain.BackendError.
type SearchBackend interface {
	// Info returns the backend identity. Used as a lightweight liveness call.
	Info(ctx context.Context) (domain.BackendInfo, error)

	// ClusterHealth returns the cluster status, optionally waiting for a tier.
	ClusterHealth(ctx context.Context, req HealthRequest) (domain.ClusterHealth, error)

	// Exists reports whether the named index exists.
	Exists(ctx context.Context, index string) (bool, error)

	// CreateIndex creates an index from the schema.
	CreateIndex(ctx context.Context, schema domain.IndexSchema) error

	// DeleteIndex removes an index and all its documents.
	DeleteIndex(ctx context.Context, index string) error

	// GetMapping returns the live field path → type mapping of an index.
	GetMapping(ctx context.Context, index string) (map[string]string, error)

	// Bulk submits all operations in a single request. The backend applies
	// each document independently; Items are aligned with req.Operations.
	Bulk(ctx context.Context, req BulkRequest) (*BulkResponse, error)

	// Search runs a compiled relevance query.
	Search(ctx context.Context, index string, query domain.SearchQuery) (*SearchResponse, error)

	// Suggest runs a compiled completion request.
	Suggest(ctx context.Context, index string, query domain.SuggestQuery) ([]SuggestOption, error)

	// Range returns verses with ids in [StartID, StartID+Count), ascending.
	Range(ctx context.Context, index string, query domain.RangeQuery) (*SearchResponse, error)

	// Count returns the number of documents in an index.
	Count(ctx context.Context, index string) (int64, error)

	// Close releases resources.
	Close() error
}

// HealthRequest parameterises a cluster health call.
type HealthRequest struct {
	// WaitForStatus blocks server-side until the tier is reached or Timeout elapses.
	WaitForStatus domain.HealthStatus

	// Timeout bounds the server-side wait.
	Timeout time.Duration
}

// BulkRequest is an ordered sequence of directives and documents.
type BulkRequest struct {
	Index      string
	Operations []domain.BulkOperation

	// Refresh makes the written documents searchable before returning.
	Refresh bool
}

// BulkResponse is the backend acknowledgement of a bulk request.
type BulkResponse struct {
	// Errors is set when at least one item failed.
	Errors bool
	Took   time.Duration
	Items  []BulkItem
}

// BulkItem is the per-document result of a bulk request.
type BulkItem struct {
	DocumentID string
	Status     int
	Error      *domain.ItemError
}

// SearchResponse is a raw search response before projection.
type SearchResponse struct {
	Took  time.Duration
	Total int64
	Hits  []RawHit
}

// RawHit is a backend hit with its stored source and highlight fragments.
type RawHit struct {
	ID        string
	Score     float64
	Source    json.RawMessage
	Highlight map[string][]string
}

// SuggestOption is a raw completion option.
type SuggestOption struct {
	Text   string
	Source json.RawMessage
}
