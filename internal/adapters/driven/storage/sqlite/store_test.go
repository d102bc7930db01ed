package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func testRun(id string, started time.Time) domain.SyncRun {
	return domain.SyncRun{
		ID:         id,
		Mode:       domain.ModeSync,
		Collection: "oslo-terminology",
		Records:    5,
		Inserted:   3,
		Updated:    2,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "history.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.RunStore().Save(context.Background(), testRun("r1", time.Now())))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	_, err = second.RunStore().Get(context.Background(), "r1")
	assert.NoError(t, err)
}

func TestRunStore_SaveAndGet(t *testing.T) {
	runs := setupTestStore(t).RunStore()
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)
	run := testRun("r1", started)
	run.Failed = 1
	run.Error = "engine bulk: connection refused"
	require.NoError(t, runs.Save(ctx, run))

	got, err := runs.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, domain.ModeSync, got.Mode)
	assert.Equal(t, 5, got.Records)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, run.Error, got.Error)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, 1500*time.Millisecond, got.Duration())
}

func TestRunStore_Get_NotFound(t *testing.T) {
	runs := setupTestStore(t).RunStore()

	_, err := runs.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_Save_Replaces(t *testing.T) {
	runs := setupTestStore(t).RunStore()
	ctx := context.Background()

	run := testRun("r1", time.Now())
	require.NoError(t, runs.Save(ctx, run))
	run.Mode = domain.ModePush
	run.Skipped = 4
	require.NoError(t, runs.Save(ctx, run))

	all, err := runs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.ModePush, all[0].Mode)
	assert.Equal(t, 4, all[0].Skipped)
	assert.Empty(t, all[0].Error)
}

func TestRunStore_List_NewestFirstWithLimit(t *testing.T) {
	runs := setupTestStore(t).RunStore()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, runs.Save(ctx, testRun("old", base)))
	require.NoError(t, runs.Save(ctx, testRun("new", base.Add(2*time.Hour))))
	require.NoError(t, runs.Save(ctx, testRun("mid", base.Add(time.Hour))))

	all, err := runs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	top, err := runs.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "new", top[0].ID)
}

func TestRunStore_List_Empty(t *testing.T) {
	runs := setupTestStore(t).RunStore()

	all, err := runs.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}
