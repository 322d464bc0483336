package filecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EmptyLoad(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	state, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
	assert.Nil(t, state.PreviousHash)
}

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "REQ-1: Login", "h1"))

	state, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "REQ-1: Login", *state.PreviousContent)
	assert.Equal(t, "h1", *state.PreviousHash)
	assert.False(t, state.UpdatedAt.IsZero())

	raw, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"requirements_hash": "h1"`)

	info, err := os.Stat(filepath.Join(dir, "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	state, err = s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestStore_ContentWithoutMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("old"), 0600))
	s, err := New(dir)
	require.NoError(t, err)

	state, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "old", *state.PreviousContent)
	assert.Nil(t, state.PreviousHash)
}

func TestStore_CorruptMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("old"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("{"), 0600))
	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	assert.Error(t, err)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
