package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pocket-ledger/internal/common"
	"github.com/Veraticus/pocket-ledger/internal/ledger"
)

func setupCheckpointTest(t *testing.T) (*SQLiteStorage, *CheckpointManager) {
	t.Helper()
	store, cleanup := createTestStorage(t)
	t.Cleanup(cleanup)

	require.NoError(t, store.Save(context.Background(), sampleState()))

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)
	return store, cm
}

func TestCheckpointCreate(t *testing.T) {
	_, cm := setupCheckpointTest(t)
	ctx := context.Background()

	info, err := cm.Create(ctx, "before-cleanup", "manual snapshot")
	require.NoError(t, err)
	assert.Equal(t, "before-cleanup", info.ID)
	assert.Equal(t, "manual snapshot", info.Description)
	assert.Equal(t, 2, info.Accounts)
	assert.Equal(t, 2, info.Categories)
	assert.Equal(t, 1, info.Budgets)
	assert.Equal(t, 2, info.Records)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.False(t, info.IsAuto)
	assert.Positive(t, info.FileSize)

	assert.FileExists(t, filepath.Join(cm.Dir(), "before-cleanup.db"))
	assert.FileExists(t, filepath.Join(cm.Dir(), "before-cleanup.meta.json"))

	_, err = cm.Create(ctx, "before-cleanup", "again")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	_, err = cm.Create(ctx, "../outside", "")
	assert.ErrorIs(t, err, ErrInvalidCheckpointID)
}

func TestCheckpointCreateGeneratesTag(t *testing.T) {
	_, cm := setupCheckpointTest(t)
	cm.now = func() time.Time { return time.Date(2024, 5, 1, 8, 30, 15, 0, time.UTC) }

	info, err := cm.Create(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "checkpoint-2024-05-01-083015", info.ID)
}

func TestCheckpointListNewestFirst(t *testing.T) {
	_, cm := setupCheckpointTest(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, tag := range []string{"first", "second", "third"} {
		offset := time.Duration(i) * time.Hour
		cm.now = func() time.Time { return base.Add(offset) }
		_, err := cm.Create(ctx, tag, "")
		require.NoError(t, err)
	}

	// Unreadable metadata is skipped.
	require.NoError(t, os.WriteFile(filepath.Join(cm.Dir(), "broken.meta.json"), []byte("{"), 0600))

	list, err := cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].ID)
	assert.Equal(t, "second", list[1].ID)
	assert.Equal(t, "first", list[2].ID)

	info, err := cm.Get(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Records)

	_, err = cm.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCheckpointRestore(t *testing.T) {
	store, cm := setupCheckpointTest(t)
	ctx := context.Background()

	_, err := cm.Create(ctx, "good", "")
	require.NoError(t, err)

	changed := ledger.Reduce(sampleState(), ledger.DeleteCategory{CategoryID: "cat-food"})
	require.NoError(t, store.Save(ctx, changed))

	require.NoError(t, cm.Restore(ctx, "good"))

	reopened, err := NewSQLiteStorage(store.Path())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assertStatesEqual(t, sampleState(), got)
}

func TestCheckpointRestoreMissing(t *testing.T) {
	_, cm := setupCheckpointTest(t)

	err := cm.Restore(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestCheckpointDelete(t *testing.T) {
	store, cm := setupCheckpointTest(t)
	ctx := context.Background()

	_, err := cm.Create(ctx, "temp", "")
	require.NoError(t, err)

	var rows int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checkpoint_metadata WHERE id = 'temp'`).Scan(&rows))
	assert.Equal(t, 1, rows)

	require.NoError(t, cm.Delete(ctx, "temp"))
	assert.NoFileExists(t, filepath.Join(cm.Dir(), "temp.db"))
	assert.NoFileExists(t, filepath.Join(cm.Dir(), "temp.meta.json"))

	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checkpoint_metadata WHERE id = 'temp'`).Scan(&rows))
	assert.Zero(t, rows)

	assert.ErrorIs(t, cm.Delete(ctx, "temp"), ErrCheckpointNotFound)
}

func TestAutoCheckpointKeepsNewest(t *testing.T) {
	_, cm := setupCheckpointTest(t)
	ctx := context.Background()
	cm.SetKeepAuto(2)

	_, err := cm.Create(ctx, "manual", "")
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		offset := time.Duration(i+1) * time.Minute
		cm.now = func() time.Time { return base.Add(offset) }
		require.NoError(t, cm.AutoCheckpoint(ctx, fmt.Sprintf("import%d", i)))
	}

	list, err := cm.List(ctx)
	require.NoError(t, err)

	var auto []string
	manual := 0
	for _, cp := range list {
		if cp.IsAuto {
			auto = append(auto, cp.ID)
		} else {
			manual++
		}
	}
	assert.Equal(t, 1, manual)
	require.Len(t, auto, 2)
	assert.Contains(t, auto[0], "auto-import3-")
	assert.Contains(t, auto[1], "auto-import2-")
}

func TestSetKeepAutoDefaults(t *testing.T) {
	_, cm := setupCheckpointTest(t)
	cm.SetKeepAuto(0)
	assert.Equal(t, DefaultKeepAutoCheckpoints, cm.keepAuto)
}
