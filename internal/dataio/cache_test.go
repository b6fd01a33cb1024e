package dataio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PathIsStable(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	require.NoError(t, err)

	a := c.Path("https://example.org/a")
	assert.Equal(t, a, c.Path("https://example.org/a"))
	assert.NotEqual(t, a, c.Path("https://example.org/b"))
	assert.Len(t, filepath.Base(a), 32)
}

func TestCache_CommitAndLookup(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	require.NoError(t, err)

	_, ok := c.Lookup("u")
	assert.False(t, ok)

	p, err := c.Create("u")
	require.NoError(t, err)
	_, err = p.WriteString("data")
	require.NoError(t, err)
	path, err := p.Commit()
	require.NoError(t, err)

	got, ok := c.Lookup("u")
	require.True(t, ok)
	assert.Equal(t, path, got)
	b, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestCache_Discard(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, 0)
	require.NoError(t, err)

	p, err := c.Create("u")
	require.NoError(t, err)
	p.Discard()

	_, ok := c.Lookup("u")
	assert.False(t, ok)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCache_MaxAge(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Minute)
	require.NoError(t, err)

	p, err := c.Create("u")
	require.NoError(t, err)
	path, err := p.Commit()
	require.NoError(t, err)

	_, ok := c.Lookup("u")
	assert.True(t, ok)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
	_, ok = c.Lookup("u")
	assert.False(t, ok)
}

func TestNewCache_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	_, err := NewCache(dir, 0)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
