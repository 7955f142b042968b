package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
	"github.com/custodia-labs/versesearch/internal/core/ports/driving"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// Ensure IndexManager implements the interface.
var _ driving.IndexService = (*IndexManager)(nil)

// IndexManager keeps the verse index present and ready.
// It waits for backend readiness before every lifecycle operation.
type IndexManager struct {
	backend driven.SearchBackend
	prober  *ReadinessProber
	backoff Backoff
	schema  domain.IndexSchema
}

// NewIndexManager creates an index manager for the given schema.
func NewIndexManager(
	backend driven.SearchBackend,
	prober *ReadinessProber,
	backoff Backoff,
	schema domain.IndexSchema,
) *IndexManager {
	return &IndexManager{
		backend: backend,
		prober:  prober,
		backoff: backoff,
		schema:  schema,
	}
}

// Schema returns the schema this manager maintains.
func (m *IndexManager) Schema() domain.IndexSchema {
	return m.schema
}

// Ensure creates the configured index if absent.
func (m *IndexManager) Ensure(ctx context.Context) error {
	return m.EnsureIndex(ctx, m.schema)
}

// Rebuild deletes and recreates the configured index.
func (m *IndexManager) Rebuild(ctx context.Context) error {
	return m.RebuildIndex(ctx, m.schema)
}

// EnsureIndex creates the index if it does not exist. If it exists the call
// is a no-op apart from an advisory schema drift check; drift is logged and
// never corrected. EnsureIndex never deletes data.
func (m *IndexManager) EnsureIndex(ctx context.Context, schema domain.IndexSchema) error {
	logger.Section("Ensure Index")
	if err := schema.Validate(); err != nil {
		return err
	}

	if _, err := m.prober.WaitUntilReady(ctx, m.backoff); err != nil {
		return err
	}

	return m.ensure(ctx, schema)
}

// RebuildIndex deletes the index if present and creates it again.
// If the backend never becomes ready nothing is deleted.
func (m *IndexManager) RebuildIndex(ctx context.Context, schema domain.IndexSchema) error {
	logger.Section("Rebuild Index")
	if err := schema.Validate(); err != nil {
		return err
	}

	if _, err := m.prober.WaitUntilReady(ctx, m.backoff); err != nil {
		return err
	}

	exists, err := m.backend.Exists(ctx, schema.Name)
	if err != nil {
		return fmt.Errorf("check index %q: %w", schema.Name, err)
	}
	if exists {
		if err := m.backend.DeleteIndex(ctx, schema.Name); err != nil {
			return fmt.Errorf("delete index %q: %w", schema.Name, err)
		}
		logger.Info("Existing index deleted: %s", schema.Name)
	}

	return m.ensure(ctx, schema)
}

// ensure performs the exists/create step. Readiness must already hold.
func (m *IndexManager) ensure(ctx context.Context, schema domain.IndexSchema) error {
	exists, err := m.backend.Exists(ctx, schema.Name)
	if err != nil {
		return fmt.Errorf("check index %q: %w", schema.Name, err)
	}

	if exists {
		logger.Info("Index already exists: %s", schema.Name)
		m.checkDrift(ctx, schema)
		return nil
	}

	logger.Info("Creating index: %s", schema.Name)
	if err := m.backend.CreateIndex(ctx, schema); err != nil {
		return createError(schema.Name, err)
	}
	logger.Info("Index created: %s", schema.Name)

	m.logHealth(ctx)
	return nil
}

// checkDrift compares the live mapping with the schema and logs differences.
func (m *IndexManager) checkDrift(ctx context.Context, schema domain.IndexSchema) {
	live, err := m.backend.GetMapping(ctx, schema.Name)
	if err != nil {
		logger.Warn("Could not verify mapping for %s: %v", schema.Name, err)
		return
	}

	drift := schema.Diff(live)
	if len(drift) == 0 {
		logger.Debug("Mapping verified for index: %s", schema.Name)
		return
	}

	for _, d := range drift {
		logger.Warn("Schema drift on %s.%s: expected %q, found %q (rebuild the index to apply)",
			schema.Name, d.Field, d.Expected, d.Actual)
	}
}

// logHealth logs a post-creation health snapshot.
func (m *IndexManager) logHealth(ctx context.Context) {
	health, err := m.backend.ClusterHealth(ctx, driven.HealthRequest{
		WaitForStatus: domain.HealthYellow,
		Timeout:       m.backoff.normalized().HealthTimeout * 2,
	})
	if err != nil {
		logger.Warn("Post-create health check failed: %v", err)
		return
	}
	logger.Debug("Cluster health: status=%s nodes=%d primary_shards=%d shards=%d",
		health.Status, health.NumberOfNodes, health.ActivePrimaryShards, health.ActiveShards)
}

// createError wraps a backend failure as an IndexCreateError with diagnostics.
func createError(index string, err error) error {
	var be *domain.BackendError
	if errors.As(err, &be) && be.Err == nil {
		return &domain.IndexCreateError{Index: index, Status: be.Status, Detail: be.Detail, Err: err}
	}
	return &domain.IndexCreateError{Index: index, Err: err}
}
