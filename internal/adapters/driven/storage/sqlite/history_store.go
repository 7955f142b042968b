package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// historyStore implements driven.IngestionHistory.
type historyStore struct {
	store *Store
}

var _ driven.IngestionHistory = (*historyStore)(nil)

// Record stores a run. A run with an existing batch id replaces it.
func (s *historyStore) Record(ctx context.Context, run domain.IngestionRun) error {
	if run.BatchID == "" {
		return fmt.Errorf("%w: batch id is required", domain.ErrInvalidInput)
	}

	failed := run.FailedIDs
	if failed == nil {
		failed = []int64{}
	}
	failedJSON, err := json.Marshal(failed)
	if err != nil {
		return fmt.Errorf("marshalling failed ids: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (batch_id, index_name, mode, total, succeeded, failed_ids, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(batch_id) DO UPDATE SET
			index_name = excluded.index_name,
			mode = excluded.mode,
			total = excluded.total,
			succeeded = excluded.succeeded,
			failed_ids = excluded.failed_ids,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, run.BatchID, run.Index, string(run.Mode), run.Total, run.Succeeded,
		string(failedJSON), nullString(run.Error),
		formatTime(run.StartedAt), formatTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving ingestion run: %w", err)
	}
	return nil
}

// Get retrieves a run by batch id.
func (s *historyStore) Get(ctx context.Context, batchID string) (*domain.IngestionRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT batch_id, index_name, mode, total, succeeded, failed_ids, error, started_at, finished_at
		FROM ingestion_runs WHERE batch_id = ?
	`, batchID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT batch_id, index_name, mode, total, succeeded, failed_ids, error, started_at, finished_at
		FROM ingestion_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingestion runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.IngestionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingestion runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.IngestionRun, error) {
	var (
		run                 domain.IngestionRun
		mode, failedJSON    string
		runErr              sql.NullString
		startedAt, finished string
	)
	err := row.Scan(&run.BatchID, &run.Index, &mode, &run.Total, &run.Succeeded,
		&failedJSON, &runErr, &startedAt, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning ingestion run: %w", err)
	}

	run.Mode = domain.IngestMode(mode)
	run.Error = runErr.String
	if err := json.Unmarshal([]byte(failedJSON), &run.FailedIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling failed ids: %w", err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("parsing finished_at: %w", err)
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
