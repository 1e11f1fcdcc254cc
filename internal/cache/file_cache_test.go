package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempCache[T any](t *testing.T) *FileCache[T] {
	t.Helper()
	return &FileCache[T]{cacheDir: t.TempDir()}
}

func TestFileCacheRoundTrip(t *testing.T) {
	fc := tempCache[[]string](t)
	key := fc.GenerateKey("ls7_ledaps", "LANDSAT_7", 2023)

	_, ok := fc.Get(key)
	assert.False(t, ok)

	require.NoError(t, fc.Set(key, []string{"2023-01-01", "2023-02-01"}))
	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"2023-01-01", "2023-02-01"}, got)
}

func TestFileCacheKeyIsStable(t *testing.T) {
	fc := tempCache[int](t)
	assert.Equal(t, fc.GenerateKey("a", 1), fc.GenerateKey("a", 1))
	assert.NotEqual(t, fc.GenerateKey("a", 1), fc.GenerateKey("a", 2))
}

func TestFileCacheRejectsCorruptEntries(t *testing.T) {
	fc := tempCache[string](t)
	key := fc.GenerateKey("scene")
	require.NoError(t, fc.Set(key, "payload"))

	path := filepath.Join(fc.cacheDir, key+".json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":"tampered","created_at":"2023-01-01T00:00:00Z","checksum":"nope"}`), 0644))

	_, ok := fc.Get(key)
	assert.False(t, ok)
}

func TestFileCacheMaxAge(t *testing.T) {
	fc := tempCache[int](t).WithMaxAge(time.Nanosecond)
	key := fc.GenerateKey("expiring")
	require.NoError(t, fc.Set(key, 42))

	time.Sleep(time.Millisecond)
	_, ok := fc.Get(key)
	assert.False(t, ok)
}

func TestFileCacheInvalidate(t *testing.T) {
	fc := tempCache[int](t)
	key := fc.GenerateKey("gone")
	require.NoError(t, fc.Set(key, 7))
	require.NoError(t, fc.Invalidate(key))
	_, ok := fc.Get(key)
	assert.False(t, ok)
	assert.NoError(t, fc.Invalidate(key))
}
