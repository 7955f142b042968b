package driving

import (
	"context"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// IngestService loads verse batches into the index.
type IngestService interface {
	// Ingest upserts records into the existing index, creating it if absent.
	Ingest(ctx context.Context, records []domain.Verse) (*domain.BulkOutcome, error)

	// Reload destroys and recreates the index, then ingests records.
	// Documents outside the batch are discarded.
	Reload(ctx context.Context, records []domain.Verse) (*domain.BulkOutcome, error)

	// History returns the most recent ingestion runs, newest first.
	History(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}
