package sqlite

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/planbook/internal/logging"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

// setupBackend returns an attached backend on a fresh data dir; it is
// detached when the test ends.
func setupBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	b := NewBackend(opts...)
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	defer b.Detach()

	_, err := os.Stat(config.DatabasePath())
	assert.NoError(t, err, "database file should exist")

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
	assert.Equal(t, config, b.Config())
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "indexeddb"}), types.ErrBackendUnknown)
}

func TestBackend_AttachCreatesNestedDataDir(t *testing.T) {
	dir := t.TempDir() + "/a/b/c"
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	require.NoError(t, b.Detach())

	_, err := os.Stat(dir)
	assert.NoError(t, err)
}

func TestBackend_Detach(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "second Detach should not error")

	_, err := b.Create(ctx, types.PlanInput{Key: "2025", Type: types.PeriodYear})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.GetAll(ctx)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.DeleteAll(ctx), types.ErrStoreDetached)
}

func TestBackend_DataSurvivesReattach(t *testing.T) {
	ctx := context.Background()
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	created, err := b.Create(ctx, types.PlanInput{Key: "2025-07", Type: types.PeriodMonth, Content: "july", Timestamp: 5})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	// Reattaching replays the schema setup, which must be a no-op.
	require.NoError(t, b.Attach(config))
	defer b.Detach()

	got, ok, err := b.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func TestBackend_SchemaVersion(t *testing.T) {
	b := setupBackend(t)

	var version int
	require.NoError(t, b.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, SchemaVersion, version)

	indexes := map[string]bool{}
	rows, err := b.db.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'plans'")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		indexes[name] = true
	}
	require.NoError(t, rows.Err())
	for _, want := range []string{"idx_plans_key", "idx_plans_type", "idx_plans_key_type", "idx_plans_timestamp"} {
		assert.True(t, indexes[want], "missing index %s", want)
	}
}

func TestBackend_RejectsNewerSchema(t *testing.T) {
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	db, err := sql.Open("sqlite", config.DatabasePath())
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	b := NewBackend()
	err = b.Attach(config)
	assert.ErrorIs(t, err, types.ErrStoreOpen)

	_, err = b.GetAll(context.Background())
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackend_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := setupBackend(t, WithLogger(zap.New(core)))

	assert.Equal(t, 1, logs.FilterMessage("plan store attached").Len())

	_, err := b.Create(context.Background(), types.PlanInput{Key: "2025", Type: types.PeriodYear})
	require.NoError(t, err)

	committed := logs.FilterMessage("transaction committed").All()
	require.Len(t, committed, 1)
	fields := committed[0].ContextMap()
	assert.Equal(t, "create", fields[logging.FieldOperation])
	assert.NotEmpty(t, fields[logging.FieldTx])

	_, err = b.Create(context.Background(), types.PlanInput{Key: "2025", Type: types.PeriodYear})
	require.ErrorIs(t, err, types.ErrDuplicateKey)
	assert.Equal(t, 1, logs.FilterMessage("transaction rolled back").Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len(), "store must not log operation errors")
}

func TestBackend_NilLoggerOption(t *testing.T) {
	b := NewBackend(WithLogger(nil))
	assert.NotNil(t, b.log)
}
