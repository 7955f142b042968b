package httpapi

import (
	"context"
	"sync"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result      *domain.SearchResult
	suggestions []domain.Suggestion
	page        *domain.VersePage
	err         error

	gotText  string
	gotFrom  int
	gotSize  int
	gotField string
	gotStart int64
	gotCount int
}

func (m *mockSearchService) Search(_ context.Context, text string, from, size int) (*domain.SearchResult, error) {
	m.gotText, m.gotFrom, m.gotSize = text, from, size
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockSearchService) Suggest(_ context.Context, prefix, field string) ([]domain.Suggestion, error) {
	m.gotText, m.gotField = prefix, field
	return m.suggestions, m.err
}

func (m *mockSearchService) Consecutive(_ context.Context, startID int64, count int) (*domain.VersePage, error) {
	m.gotStart, m.gotCount = startID, count
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	mu      sync.Mutex
	outcome *domain.BulkOutcome
	err     error
	runs    []domain.IngestionRun

	ingested [][]domain.Verse
	reloaded [][]domain.Verse
}

func (m *mockIngestService) Ingest(_ context.Context, records []domain.Verse) (*domain.BulkOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested = append(m.ingested, records)
	return m.outcome, m.err
}

func (m *mockIngestService) Reload(_ context.Context, records []domain.Verse) (*domain.BulkOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloaded = append(m.reloaded, records)
	return m.outcome, m.err
}

func (m *mockIngestService) History(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	if len(m.runs) > limit {
		return m.runs[:limit], m.err
	}
	return m.runs, m.err
}

// mockHealthService is a mock implementation of driving.HealthService.
type mockHealthService struct {
	report *domain.HealthReport
	err    error
}

func (m *mockHealthService) Health(_ context.Context) (*domain.HealthReport, error) {
	return m.report, m.err
}
