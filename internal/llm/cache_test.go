package llm

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/realprice/realprice/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingIdentifier struct {
	calls   int
	objects []string
	err     error
}

func (c *countingIdentifier) IdentifyObjects(ctx context.Context, imageData []byte, mimeType string) ([]string, error) {
	c.calls++
	return c.objects, c.err
}

func newCacheStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCachedIdentifier(t *testing.T) {
	inner := &countingIdentifier{objects: []string{"cat", "bicycle"}}
	cached := NewCachedIdentifier(inner, newCacheStore(t))

	img := []byte("image-bytes")

	objects, err := cached.IdentifyObjects(context.Background(), img, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "bicycle"}, objects)
	assert.Equal(t, 1, inner.calls)

	// Second call for the same payload hits the cache.
	objects, err = cached.IdentifyObjects(context.Background(), img, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "bicycle"}, objects)
	assert.Equal(t, 1, inner.calls)

	// Different mime type is a different cache key.
	_, err = cached.IdentifyObjects(context.Background(), img, "image/png")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedIdentifierCachesEmptyResult(t *testing.T) {
	inner := &countingIdentifier{objects: nil}
	cached := NewCachedIdentifier(inner, newCacheStore(t))

	img := []byte("empty-scene")

	objects, err := cached.IdentifyObjects(context.Background(), img, "image/jpeg")
	require.NoError(t, err)
	assert.Empty(t, objects)
	assert.Equal(t, 1, inner.calls)

	objects, err = cached.IdentifyObjects(context.Background(), img, "image/jpeg")
	require.NoError(t, err)
	assert.Empty(t, objects)
	assert.Equal(t, 1, inner.calls, "empty result should be served from cache")
}

func TestCachedIdentifierNilStore(t *testing.T) {
	inner := &countingIdentifier{objects: []string{"cat"}}
	cached := NewCachedIdentifier(inner, nil)

	for range 2 {
		objects, err := cached.IdentifyObjects(context.Background(), []byte("x"), "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, []string{"cat"}, objects)
	}
	assert.Equal(t, 2, inner.calls)
}
