package cache

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := Open(filepath.Join(t.TempDir(), ".exdraw", "cache.db"))
	require.NoError(t, err, "open cache")
	t.Cleanup(func() { cache.Close() })

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return cache
}

func TestCacheOpenClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	cache, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, cache.Path())
	require.NoError(t, cache.Put(Entry{Fingerprint: "abc", Kind: "flowchart", Theme: "modern", Style: "pro"}, []byte("{}")))
	require.NoError(t, cache.Close())

	// Reopen keeps data
	cache2, err := Open(path)
	require.NoError(t, err)
	defer cache2.Close()

	doc, _, err := cache2.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(doc))
}

func TestPutGet(t *testing.T) {
	cache := setupTestCache(t)

	entry := Entry{
		Fingerprint: "f1",
		Kind:        "architecture",
		Theme:       "sketchy",
		Style:       "pro",
		Description: "LB -> API -> DB",
		Elements:    9,
	}
	require.NoError(t, cache.Put(entry, []byte(`{"type":"excalidraw"}`)))

	doc, got, err := cache.Get("f1")
	require.NoError(t, err)
	assert.Equal(t, `{"type":"excalidraw"}`, string(doc))
	assert.Equal(t, "architecture", got.Kind)
	assert.Equal(t, "LB -> API -> DB", got.Description)
	assert.Equal(t, 9, got.Elements)
	assert.Equal(t, 1, got.Hits)

	_, got, err = cache.Get("f1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Hits)
}

func TestGetMissing(t *testing.T) {
	cache := setupTestCache(t)

	_, _, err := cache.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutKeepsHistory(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Put(Entry{Fingerprint: "f1", Kind: "flowchart", Theme: "modern", Style: "pro"}, []byte("v1")))
	_, first, err := cache.Get("f1")
	require.NoError(t, err)

	require.NoError(t, cache.Put(Entry{Fingerprint: "f1", Kind: "flowchart", Theme: "modern", Style: "pro", Elements: 3}, []byte("v2")))
	doc, again, err := cache.Get("f1")
	require.NoError(t, err)

	assert.Equal(t, "v2", string(doc))
	assert.Equal(t, 3, again.Elements)
	assert.Equal(t, 2, again.Hits, "hits survive a re-put")
	assert.Equal(t, first.CreatedAt, again.CreatedAt)
}

func TestList(t *testing.T) {
	cache := setupTestCache(t)

	for _, fp := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Put(Entry{Fingerprint: fp, Kind: "mindmap", Theme: "modern", Style: "basic"}, []byte(fp)))
	}

	all, err := cache.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].Fingerprint, all[1].Fingerprint, all[2].Fingerprint})

	two, err := cache.List(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestDelete(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Put(Entry{Fingerprint: "x", Kind: "flowchart", Theme: "modern", Style: "pro"}, []byte("x")))
	require.NoError(t, cache.Delete("x"))
	assert.ErrorIs(t, cache.Delete("x"), ErrNotFound)
}

func TestFileSignals(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.SetFileSignals("app/main.py", "h1", []byte(`{"imports":["fastapi"]}`)))

	data, ok, err := cache.FileSignals("app/main.py", "h1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"imports":["fastapi"]}`, string(data))

	_, ok, err = cache.FileSignals("app/main.py", "h2")
	require.NoError(t, err)
	assert.False(t, ok, "stale hash is a miss")

	_, ok, err = cache.FileSignals("other.py", "h1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.DeleteFileEntry("app/main.py"))
	_, err = cache.GetFileEntry("app/main.py")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestClearAndStats(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Put(Entry{Fingerprint: "a", Kind: "flowchart", Theme: "modern", Style: "pro"}, []byte("a")))
	require.NoError(t, cache.SetFileSignals("a.py", "h", []byte("{}")))
	_, _, err := cache.Get("a")
	require.NoError(t, err)

	stats, err := cache.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.GenerationCount)
	assert.Equal(t, int64(1), stats.FileIndexCount)
	assert.Equal(t, int64(1), stats.TotalHits)

	require.NoError(t, cache.Clear())
	stats, err = cache.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.GenerationCount)
	assert.Zero(t, stats.FileIndexCount)
}
