package sqlite_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/planbook/pkg/sqlite"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

func TestNewBackend(t *testing.T) {
	ctx := context.Background()
	store := sqlite.NewBackend(sqlite.WithLogger(zap.NewNop()))
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer store.Detach()

	created, err := store.Create(ctx, types.PlanInput{Key: "2025-W27", Type: types.PeriodWeek, Content: "sprint"})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := store.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), `"key":"2025-W27"`)

	require.NoError(t, store.DeleteAll(ctx))
	_, err = store.Import(ctx, &buf)
	require.NoError(t, err)

	got, ok, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func TestNewBackend_Detached(t *testing.T) {
	store := sqlite.NewBackend()
	_, err := store.GetAll(context.Background())
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}
