package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func testRun(batchID string, started time.Time) domain.IngestionRun {
	return domain.IngestionRun{
		BatchID:    batchID,
		Index:      "verses",
		Mode:       domain.IngestModeUpsert,
		Total:      5,
		Succeeded:  3,
		FailedIDs:  []int64{2, 4},
		Error:      "2 of 5 documents failed to index",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "history.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.IngestionHistory().Record(ctx, testRun("batch-1", started)))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	run, err := second.IngestionHistory().Get(ctx, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, "batch-1", run.BatchID)
}

func TestMigrate_RecordsVersionOnce(t *testing.T) {
	store := setupTestStore(t)

	fsys := fstest.MapFS{
		"002_extra.up.sql":   {Data: []byte("CREATE TABLE extra (id INTEGER PRIMARY KEY);")},
		"002_extra.down.sql": {Data: []byte("DROP TABLE extra;")},
		"notes.up.sql":       {Data: []byte("this is not sql")},
	}
	require.NoError(t, store.migrate(fsys))
	require.NoError(t, store.migrate(fsys))

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	store := setupTestStore(t)

	err := store.migrate(fstest.MapFS{
		"003_broken.up.sql": {Data: []byte("CREATE TABLE oops (;")},
	})
	require.Error(t, err)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

// ==================== Ingestion History Tests ====================

func TestHistory_RecordAndGet(t *testing.T) {
	history := setupTestStore(t).IngestionHistory()
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	run := testRun("batch-1", started)

	require.NoError(t, history.Record(ctx, run))

	got, err := history.Get(ctx, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)
}

func TestHistory_RecordNormalisesToUTC(t *testing.T) {
	history := setupTestStore(t).IngestionHistory()
	ctx := context.Background()
	local := time.Date(2024, 3, 1, 14, 0, 0, 0, time.FixedZone("EET", 2*3600))

	require.NoError(t, history.Record(ctx, testRun("batch-1", local)))

	got, err := history.Get(ctx, "batch-1")
	require.NoError(t, err)
	assert.True(t, got.StartedAt.Equal(local))
	assert.Equal(t, time.UTC, got.StartedAt.Location())
}

func TestHistory_RecordWithoutFailures(t *testing.T) {
	history := setupTestStore(t).IngestionHistory()
	ctx := context.Background()
	run := testRun("batch-ok", time.Now().UTC())
	run.FailedIDs = nil
	run.Error = ""
	run.Succeeded = run.Total

	require.NoError(t, history.Record(ctx, run))

	got, err := history.Get(ctx, "batch-ok")
	require.NoError(t, err)
	assert.Empty(t, got.FailedIDs)
	assert.Empty(t, got.Error)
}

func TestHistory_RecordReplacesSameBatch(t *testing.T) {
	history := setupTestStore(t).IngestionHistory()
	ctx := context.Background()
	run := testRun("batch-1", time.Now().UTC())

	require.NoError(t, history.Record(ctx, run))
	run.Succeeded = 5
	run.FailedIDs = nil
	require.NoError(t, history.Record(ctx, run))

	runs, err := history.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 5, runs[0].Succeeded)
}

func TestHistory_RecordRequiresBatchID(t *testing.T) {
	history := setupTestStore(t).IngestionHistory()

	err := history.Record(context.Background(), testRun("", time.Now()))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistory_GetMissing(t *testing.T) {
	history := setupTestStore(t).IngestionHistory()

	_, err := history.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory_ListNewestFirstWithLimit(t *testing.T) {
	history := setupTestStore(t).IngestionHistory()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, history.Record(ctx, testRun("old", base)))
	require.NoError(t, history.Record(ctx, testRun("newest", base.Add(2*time.Hour))))
	require.NoError(t, history.Record(ctx, testRun("middle", base.Add(time.Hour))))

	runs, err := history.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newest", runs[0].BatchID)
	assert.Equal(t, "middle", runs[1].BatchID)
}

func TestHistory_ListEmpty(t *testing.T) {
	history := setupTestStore(t).IngestionHistory()

	runs, err := history.List(context.Background(), 10)

	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
