package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
	"github.com/custodia-labs/versesearch/internal/core/ports/driving"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// Ensure IngestCoordinator implements the interface.
var _ driving.IngestService = (*IngestCoordinator)(nil)

// defaultHistoryLimit is used when History is called with a non-positive limit.
const defaultHistoryLimit = 20

// IngestCoordinator turns verse batches into a single bulk write and
// itemises the documents the backend refused.
//
// Ingest upserts into the existing index: prior documents survive and only
// ids present in the batch are overwritten. Reload is the destructive
// variant. Neither serialises against the other; callers that run them
// concurrently on one index must hold an IndexLocks lock.
type IngestCoordinator struct {
	backend driven.SearchBackend
	indexes *IndexManager
	history driven.IngestionHistory
	newID   func() string
	now     func() time.Time
}

// NewIngestCoordinator creates a coordinator writing to the manager's index.
func NewIngestCoordinator(backend driven.SearchBackend, indexes *IndexManager) *IngestCoordinator {
	return &IngestCoordinator{
		backend: backend,
		indexes: indexes,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// SetHistory sets the optional ingestion audit store.
func (c *IngestCoordinator) SetHistory(h driven.IngestionHistory) {
	c.history = h
}

// Ingest upserts records into the index, creating it first if absent.
// Empty input succeeds with zero counts and makes no backend call.
func (c *IngestCoordinator) Ingest(ctx context.Context, records []domain.Verse) (*domain.BulkOutcome, error) {
	return c.run(ctx, records, domain.IngestModeUpsert)
}

// Reload rebuilds the index and then ingests records into it.
// Documents that are not part of the batch are discarded.
func (c *IngestCoordinator) Reload(ctx context.Context, records []domain.Verse) (*domain.BulkOutcome, error) {
	return c.run(ctx, records, domain.IngestModeRebuild)
}

// History returns recent ingestion runs.
func (c *IngestCoordinator) History(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	if c.history == nil {
		return []domain.IngestionRun{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return c.history.List(ctx, limit)
}

func (c *IngestCoordinator) run(
	ctx context.Context, records []domain.Verse, mode domain.IngestMode,
) (*domain.BulkOutcome, error) {
	schema := c.indexes.Schema()
	started := c.now()
	outcome := &domain.BulkOutcome{
		BatchID: c.newID(),
		Index:   schema.Name,
		Total:   len(records),
	}

	logger.Section("Bulk Ingestion")
	logger.Info("Batch %s: %d records, mode=%s", outcome.BatchID, outcome.Total, mode)

	var err error
	if mode == domain.IngestModeRebuild {
		err = c.indexes.RebuildIndex(ctx, schema)
	} else if len(records) > 0 {
		err = c.indexes.EnsureIndex(ctx, schema)
	}
	if err == nil && len(records) > 0 {
		err = c.write(ctx, records, outcome)
	}

	c.record(ctx, outcome, mode, started, err)
	return outcome, err
}

// write submits one bulk request and fills the outcome from its items.
func (c *IngestCoordinator) write(ctx context.Context, records []domain.Verse, outcome *domain.BulkOutcome) error {
	ops := make([]domain.BulkOperation, len(records))
	for i, r := range records {
		ops[i] = domain.BulkOperation{
			Action:     domain.BulkActionIndex,
			DocumentID: r.DocumentID(),
			Document:   r,
		}
	}

	resp, err := c.backend.Bulk(ctx, driven.BulkRequest{
		Index:      outcome.Index,
		Operations: ops,
		Refresh:    true,
	})
	if err != nil {
		return fmt.Errorf("bulk write: %w", err)
	}
	outcome.Took = resp.Took

	if !resp.Errors {
		outcome.Succeeded = outcome.Total
		logger.Info("Batch %s: indexed %d documents", outcome.BatchID, outcome.Succeeded)
		return nil
	}

	if len(resp.Items) != len(records) {
		return &domain.BackendError{
			Op:     "bulk",
			Detail: fmt.Sprintf("response has %d items for %d operations", len(resp.Items), len(records)),
		}
	}

	for i, item := range resp.Items {
		if item.Error == nil {
			continue
		}
		outcome.Failures = append(outcome.Failures, domain.FailedDocument{
			Record: records[i],
			Status: item.Status,
			Error:  *item.Error,
		})
	}
	outcome.Succeeded = outcome.Total - len(outcome.Failures)

	if !outcome.Failed() {
		logger.Warn("Batch %s: backend flagged errors but no item carried one", outcome.BatchID)
		return nil
	}

	for _, f := range outcome.Failures {
		logger.Error("Batch %s: verse %d failed (status %d): %s: %s",
			outcome.BatchID, f.Record.ID, f.Status, f.Error.Type, f.Error.Reason)
	}
	return &domain.PartialIndexError{Outcome: *outcome}
}

// record saves the run to the audit store. Audit failures are logged only.
func (c *IngestCoordinator) record(
	ctx context.Context, outcome *domain.BulkOutcome, mode domain.IngestMode, started time.Time, runErr error,
) {
	if c.history == nil {
		return
	}
	run := domain.IngestionRun{
		BatchID:    outcome.BatchID,
		Index:      outcome.Index,
		Mode:       mode,
		Total:      outcome.Total,
		Succeeded:  outcome.Succeeded,
		FailedIDs:  outcome.FailedIDs(),
		StartedAt:  started.UTC(),
		FinishedAt: c.now().UTC(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := c.history.Record(ctx, run); err != nil {
		logger.Warn("Could not record ingestion run %s: %v", outcome.BatchID, err)
	}
}
