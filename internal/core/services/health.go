package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
	"github.com/custodia-labs/versesearch/internal/core/ports/driving"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// HealthService reports a one-shot snapshot of the backend and the index.
// Unlike the prober it never retries.
type HealthService struct {
	backend driven.SearchBackend
	index   string
}

// NewHealthService creates a health service for the named index.
func NewHealthService(backend driven.SearchBackend, index string) *HealthService {
	return &HealthService{backend: backend, index: index}
}

// Health returns backend identity, cluster health and index state.
// Backend failures are wrapped with domain.ErrBackendUnavailable.
func (s *HealthService) Health(ctx context.Context) (*domain.HealthReport, error) {
	info, err := s.backend.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	cluster, err := s.backend.ClusterHealth(ctx, driven.HealthRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	report := &domain.HealthReport{
		Backend: info,
		Cluster: cluster,
		Index:   s.index,
	}

	exists, err := s.backend.Exists(ctx, s.index)
	if err != nil {
		return nil, fmt.Errorf("check index %q: %w", s.index, err)
	}
	report.IndexExists = exists
	if !exists {
		return report, nil
	}

	count, err := s.backend.Count(ctx, s.index)
	if err != nil {
		return nil, fmt.Errorf("count index %q: %w", s.index, err)
	}
	report.DocumentCount = count
	return report, nil
}
