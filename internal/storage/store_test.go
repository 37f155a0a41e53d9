package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIdentificationCache(t *testing.T) {
	s := newTestStore(t)

	// Miss returns nil, nil.
	objects, err := s.GetIdentificationCache("nope")
	require.NoError(t, err)
	assert.Nil(t, objects)

	require.NoError(t, s.SetIdentificationCache("hash1", []string{"cat", "bicycle"}))

	objects, err = s.GetIdentificationCache("hash1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "bicycle"}, objects)
}

func TestIdentificationCacheEmptyResult(t *testing.T) {
	// "Ran and found nothing" is a cacheable outcome distinct from a miss.
	s := newTestStore(t)

	require.NoError(t, s.SetIdentificationCache("empty", nil))

	objects, err := s.GetIdentificationCache("empty")
	require.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Empty(t, objects)
}

func TestIdentificationCacheOverwrite(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetIdentificationCache("h", []string{"old"}))
	require.NoError(t, s.SetIdentificationCache("h", []string{"new"}))

	objects, err := s.GetIdentificationCache("h")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, objects)
}

func TestRunHistory(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, s.SaveRun("hash1", json.RawMessage(`{"objects":[]}`)))
	require.NoError(t, s.SaveRun("hash2", json.RawMessage(`{"objects":[{"original":"cat"}]}`)))

	runs, err = s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Newest first.
	assert.Equal(t, "hash2", runs[0].ImageHash)
	assert.Equal(t, "hash1", runs[1].ImageHash)
	assert.JSONEq(t, `{"objects":[{"original":"cat"}]}`, string(runs[0].Result))

	runs, err = s.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "hash2", runs[0].ImageHash)
}
