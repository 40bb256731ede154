package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiatastic/exdraw/internal/cache"
)

type memStore struct {
	docs    map[string][]byte
	puts    int
	failGet error
}

func (m *memStore) Get(fp string) ([]byte, *cache.Entry, error) {
	if m.failGet != nil {
		return nil, nil, m.failGet
	}
	data, ok := m.docs[fp]
	if !ok {
		return nil, nil, cache.ErrNotFound
	}
	return data, &cache.Entry{Fingerprint: fp}, nil
}

func (m *memStore) Put(e cache.Entry, document []byte) error {
	if m.docs == nil {
		m.docs = make(map[string][]byte)
	}
	m.puts++
	m.docs[e.Fingerprint] = document
	return nil
}

func TestGenerateCached(t *testing.T) {
	e := newEngine()
	store := &memStore{}
	req := Request{
		Description: "Users -> CDN -> Load Balancer -> API -> Redis Cache -> Postgres DB",
		Kind:        "architecture",
	}

	first, cached, err := e.GenerateCached(req, store)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, store.puts)

	second, cached, err := e.GenerateCached(req, store)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, store.puts)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.JSON, second.JSON)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestGenerateCachedLookupFailure(t *testing.T) {
	store := &memStore{failGet: errors.New("database is locked")}

	res, cached, err := newEngine().GenerateCached(Request{Description: "A -> B"}, store)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotNil(t, res.Document)
}

func TestGenerateCachedNilStore(t *testing.T) {
	res, cached, err := newEngine().GenerateCached(Request{Description: "A -> B"}, nil)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, res.Summary.Nodes)

	_, _, err = newEngine().GenerateCached(Request{}, nil)
	assert.Error(t, err)
}

func TestGenerateCachedSQLite(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	req := Request{Description: "Start -> Valid? -> Done"}
	_, cached, err := newEngine().GenerateCached(req, c)
	require.NoError(t, err)
	assert.False(t, cached)

	res, cached, err := newEngine().GenerateCached(req, c)
	require.NoError(t, err)
	assert.True(t, cached)

	entries, err := c.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.Fingerprint, entries[0].Fingerprint)
	assert.Equal(t, "flowchart", entries[0].Kind)
	assert.Equal(t, 1, entries[0].Hits)
}
