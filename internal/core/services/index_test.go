package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

func TestEnsureIndex_CreatesWhenAbsent(t *testing.T) {
	backend := newMockBackend()
	mgr, _ := newTestManager(backend, 3)

	err := mgr.Ensure(context.Background())

	require.NoError(t, err)
	assert.True(t, backend.indexes["verses"])
	assert.Equal(t, 1, backend.count("create"))
	assert.Equal(t, 0, backend.count("mapping"))
}

func TestEnsureIndex_Idempotent(t *testing.T) {
	backend := newMockBackend()
	mgr, _ := newTestManager(backend, 3)
	ctx := context.Background()

	require.NoError(t, mgr.Ensure(ctx))
	require.NoError(t, mgr.Ensure(ctx))

	assert.Equal(t, 1, backend.count("create"))
	assert.Equal(t, 0, backend.count("delete"))
	assert.Equal(t, 1, backend.count("mapping"), "existing index gets a drift check")
}

func TestEnsureIndex_DriftIsAdvisory(t *testing.T) {
	backend := newMockBackend()
	backend.indexes["verses"] = true
	backend.mapping = map[string]string{"id": "keyword"}
	mgr, _ := newTestManager(backend, 3)

	err := mgr.Ensure(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, backend.count("create"))
	assert.Equal(t, 0, backend.count("delete"))
}

func TestEnsureIndex_MappingErrorIgnored(t *testing.T) {
	backend := newMockBackend()
	backend.indexes["verses"] = true
	backend.mappingErr = errors.New("boom")
	mgr, _ := newTestManager(backend, 3)

	assert.NoError(t, mgr.Ensure(context.Background()))
}

func TestEnsureIndex_BackendUnavailable(t *testing.T) {
	backend := newMockBackend()
	backend.failProbes = 100
	mgr, _ := newTestManager(backend, 2)

	err := mgr.Ensure(context.Background())

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, 0, backend.count("exists"))
	assert.Equal(t, 0, backend.count("create"))
}

func TestEnsureIndex_CreateRejected(t *testing.T) {
	backend := newMockBackend()
	backend.createErr = &domain.BackendError{
		Op:     "indices.create",
		Status: 400,
		Detail: `{"error":{"type":"illegal_argument_exception"}}`,
	}
	mgr, _ := newTestManager(backend, 1)

	err := mgr.Ensure(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexCreateFailed)
	var createErr *domain.IndexCreateError
	require.ErrorAs(t, err, &createErr)
	assert.Equal(t, "verses", createErr.Index)
	assert.Equal(t, 400, createErr.Status)
	assert.Contains(t, createErr.Detail, "illegal_argument_exception")
}

func TestEnsureIndex_CreateTransportError(t *testing.T) {
	backend := newMockBackend()
	backend.createErr = &domain.BackendError{Op: "indices.create", Err: errors.New("EOF")}
	mgr, _ := newTestManager(backend, 1)

	err := mgr.Ensure(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexCreateFailed)
	assert.ErrorIs(t, err, domain.ErrBackendRequestFailed)
}

func TestEnsureIndex_InvalidSchema(t *testing.T) {
	backend := newMockBackend()
	mgr, _ := newTestManager(backend, 1)

	err := mgr.EnsureIndex(context.Background(), domain.IndexSchema{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, backend.count("info"))
}

func TestRebuildIndex_DeletesAndRecreates(t *testing.T) {
	backend := newMockBackend()
	backend.indexes["verses"] = true
	mgr, _ := newTestManager(backend, 3)

	err := mgr.Rebuild(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, backend.count("delete"))
	assert.Equal(t, 1, backend.count("create"))
	assert.True(t, backend.indexes["verses"])
}

func TestRebuildIndex_AbsentIndexIsCreated(t *testing.T) {
	backend := newMockBackend()
	mgr, _ := newTestManager(backend, 3)

	require.NoError(t, mgr.Rebuild(context.Background()))

	assert.Equal(t, 0, backend.count("delete"))
	assert.Equal(t, 1, backend.count("create"))
}

func TestRebuildIndex_UnavailableDeletesNothing(t *testing.T) {
	backend := newMockBackend()
	backend.indexes["verses"] = true
	backend.failProbes = 100
	mgr, _ := newTestManager(backend, 2)

	err := mgr.Rebuild(context.Background())

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, 0, backend.count("delete"))
	assert.True(t, backend.indexes["verses"])
}

func TestRebuildIndex_DeleteError(t *testing.T) {
	backend := newMockBackend()
	backend.indexes["verses"] = true
	backend.deleteErr = &domain.BackendError{Op: "indices.delete", Status: 500}
	mgr, _ := newTestManager(backend, 1)

	err := mgr.Rebuild(context.Background())

	assert.ErrorIs(t, err, domain.ErrBackendRequestFailed)
	assert.Equal(t, 0, backend.count("create"))
}
