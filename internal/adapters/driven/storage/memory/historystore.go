// Package memory provides in-memory driven adapters for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.IngestionHistory = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.IngestionHistory.
type HistoryStore struct {
	mu   sync.RWMutex
	runs map[string]domain.IngestionRun
	seq  map[string]int
	next int
}

// NewHistoryStore creates a new in-memory ingestion history.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		runs: make(map[string]domain.IngestionRun),
		seq:  make(map[string]int),
	}
}

// Record stores a run. A run with an existing batch id replaces it.
func (s *HistoryStore) Record(_ context.Context, run domain.IngestionRun) error {
	if run.BatchID == "" {
		return fmt.Errorf("%w: batch id is required", domain.ErrInvalidInput)
	}
	run.FailedIDs = append([]int64(nil), run.FailedIDs...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seq[run.BatchID]; !ok {
		s.next++
		s.seq[run.BatchID] = s.next
	}
	s.runs[run.BatchID] = run
	return nil
}

// Get retrieves a run by batch id.
func (s *HistoryStore) Get(_ context.Context, batchID string) (*domain.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// List returns the most recent runs, newest first. Runs with equal start
// times are ordered by insertion, latest first.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.IngestionRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.After(b.StartedAt)
		}
		return s.seq[a.BatchID] > s.seq[b.BatchID]
	})

	if limit >= 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
