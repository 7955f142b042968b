package mcp

import (
	"context"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result      *domain.SearchResult
	suggestions []domain.Suggestion
	page        *domain.VersePage
	err         error

	gotText  string
	gotSize  int
	gotField string
	gotStart int64
	gotCount int
}

func (m *mockSearchService) Search(_ context.Context, text string, _, size int) (*domain.SearchResult, error) {
	m.gotText, m.gotSize = text, size
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockSearchService) Suggest(_ context.Context, _, field string) ([]domain.Suggestion, error) {
	m.gotField = field
	return m.suggestions, m.err
}

func (m *mockSearchService) Consecutive(_ context.Context, startID int64, count int) (*domain.VersePage, error) {
	m.gotStart, m.gotCount = startID, count
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

// mockHealthService is a mock implementation of driving.HealthService.
type mockHealthService struct {
	report *domain.HealthReport
	err    error
}

func (m *mockHealthService) Health(_ context.Context) (*domain.HealthReport, error) {
	return m.report, m.err
}
