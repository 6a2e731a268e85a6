package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBadgerStore_InMemory(t *testing.T) {
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("aa", "bb")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put("bb", "aa", 0.875))

	score, ok, err := store.Get("aa", "bb")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.875, score)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBadgerStore_PersistsAcrossOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cfg := Config{Path: dir, Logger: zaptest.NewLogger(t)}

	store, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Put("x", "y", 0.5))
	require.NoError(t, store.Close())

	reopened, err := Open(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	score, ok, err := reopened.Get("y", "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.5, score)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestKey_Ordered(t *testing.T) {
	assert.Equal(t, "score:a:b", string(Key("b", "a")))
	assert.Equal(t, Key("a", "b"), Key("b", "a"))
}
