package driven

import (
	"context"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// IngestionHistory persists the audit trail of ingestion runs.
// It never stores verse content; the backend is the only verse store.
type IngestionHistory interface {
	// Record saves a completed run.
	Record(ctx context.Context, run domain.IngestionRun) error

	// Get retrieves a run by batch id.
	Get(ctx context.Context, batchID string) (*domain.IngestionRun, error)

	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}
