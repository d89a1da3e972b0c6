package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbURL := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	repo, err := NewSQLiteRepository(dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)

	value, ok, err := repo.Get(context.Background(), ports.KeyLinks)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSQLiteRepository_SetOverwrites(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, ports.KeyLinks, `[]`))
	require.NoError(t, repo.Set(ctx, ports.KeyLinks, `[{"id":"1"}]`))
	require.NoError(t, repo.Set(ctx, ports.KeyStatistics, `{}`))

	value, ok, err := repo.Get(ctx, ports.KeyLinks)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, value)

	value, ok, err = repo.Get(ctx, ports.KeyStatistics)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{}`, value)
}

func TestSQLiteRepository_EmptyValue(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "blank", ""))
	value, ok, err := repo.Get(ctx, "blank")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)
}
