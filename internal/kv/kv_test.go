package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "laura_demandes", `[{"id":"a"}]`))
	v, ok, err := s.Get(ctx, "laura_demandes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	require.NoError(t, s.Set(ctx, "laura_demandes", `[]`))
	v, _, err = s.Get(ctx, "laura_demandes")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Remove(ctx, "laura_demandes"))
	_, ok, err = s.Get(ctx, "laura_demandes")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Remove(ctx, "laura_demandes"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStoreFile(t *testing.T) {
	path := t.TempDir() + "/data/laura.db"
	s, err := NewSQLite(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", "v"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), Options{Backend: "memory"})
	require.NoError(t, err)
	exerciseStore(t, s)
	assert.NoError(t, s.Close())
}
