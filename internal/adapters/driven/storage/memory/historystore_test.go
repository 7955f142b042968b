package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

func TestNewHistoryStore(t *testing.T) {
	store := NewHistoryStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.runs)
}

func TestHistoryStore_RecordAndGet(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	now := time.Now()

	run := domain.IngestionRun{
		BatchID:   "batch-1",
		Index:     "verses",
		Mode:      domain.IngestModeRebuild,
		Total:     3,
		Succeeded: 2,
		FailedIDs: []int64{7},
		StartedAt: now,
	}
	require.NoError(t, store.Record(ctx, run))

	got, err := store.Get(ctx, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)
}

func TestHistoryStore_RecordCopiesFailedIDs(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	ids := []int64{1, 2}

	require.NoError(t, store.Record(ctx, domain.IngestionRun{BatchID: "b", FailedIDs: ids}))
	ids[0] = 99

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got.FailedIDs)
}

func TestHistoryStore_RecordRequiresBatchID(t *testing.T) {
	store := NewHistoryStore()

	err := store.Record(context.Background(), domain.IngestionRun{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryStore_GetNotFound(t *testing.T) {
	store := NewHistoryStore()

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryStore_ListOrderAndLimit(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, domain.IngestionRun{BatchID: "a", StartedAt: base}))
	require.NoError(t, store.Record(ctx, domain.IngestionRun{BatchID: "c", StartedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Record(ctx, domain.IngestionRun{BatchID: "b", StartedAt: base}))

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].BatchID)
	assert.Equal(t, "b", runs[1].BatchID)
	assert.Equal(t, "a", runs[2].BatchID)

	runs, err = store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "c", runs[0].BatchID)
}

func TestHistoryStore_ReplaceKeepsSingleEntry(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.IngestionRun{BatchID: "a", Total: 1}))
	require.NoError(t, store.Record(ctx, domain.IngestionRun{BatchID: "a", Total: 2}))

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Total)
}

func TestHistoryStore_ConcurrentRecord(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Record(ctx, domain.IngestionRun{BatchID: string(rune('A' + i)), StartedAt: time.Now()})
		}(i)
	}
	wg.Wait()

	runs, err := store.List(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, runs, 50)
}
