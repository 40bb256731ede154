package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiatastic/exdraw/internal/cache"
	"github.com/jiatastic/exdraw/internal/engine"
	"github.com/jiatastic/exdraw/internal/excalidraw"
	"github.com/jiatastic/exdraw/internal/layout"
	"github.com/jiatastic/exdraw/internal/output"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Engine == nil {
		cfg.Engine = engine.New(layout.DefaultOptions(), nil)
	}
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresEngine(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, Config{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestGenerateDiagram(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(t, s, http.MethodPost, "/v1/diagrams",
		`{"description":"Users -> CDN -> Load Balancer -> API Server -> Redis Cache -> Postgres DB","type":"architecture"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "miss", rec.Header().Get("X-Exdraw-Cache"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	doc, err := excalidraw.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "excalidraw", doc.Type)
	assert.Equal(t, 5, doc.Count()[excalidraw.TypeArrow])
	assert.NoError(t, excalidraw.Validate(doc))
}

func TestGenerateDiagramDefaults(t *testing.T) {
	s := newTestServer(t, Config{Defaults: engine.Request{Kind: "mindmap", Theme: "technical"}})

	rec := do(t, s, http.MethodPost, "/v1/diagrams", `{"description":"Go: tooling, concurrency, types"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc, err := excalidraw.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Count()[excalidraw.TypeArrow])
	assert.Equal(t, 0, doc.Elements[0].Roughness, "technical theme draws crisp lines")
}

func TestGenerateDiagramBadgeDefault(t *testing.T) {
	s := newTestServer(t, Config{Defaults: engine.Request{Badges: true}})

	rec := do(t, s, http.MethodPost, "/v1/diagrams", `{"description":"Users -> Redis Cache","type":"architecture"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "[CACHE]", "configured badges apply when the request omits them")

	rec = do(t, s, http.MethodPost, "/v1/diagrams", `{"description":"Users -> Redis Cache","type":"architecture","badges":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "[CACHE]", "an explicit false overrides the default")
}

func TestGenerateDiagramErrors(t *testing.T) {
	s := newTestServer(t, Config{})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"not json", `{`, "invalid_request"},
		{"unknown field", `{"description":"A -> B","colour":"red"}`, "invalid_request"},
		{"empty description", `{"description":""}`, engine.CodeMalformedDescription},
		{"dangling arrow", `{"description":"A ->"}`, engine.CodeMalformedDescription},
		{"unknown type", `{"description":"A -> B","type":"gantt"}`, engine.CodeUnknownKind},
		{"unknown theme", `{"description":"A -> B","theme":"neon"}`, engine.CodeUnsupportedStyle},
		{"bad direction", `{"description":"A -> B","direction":"up"}`, engine.CodeInvalidOptions},
		{"dangling edge", `{"graph":{"nodes":[{"key":"a","label":"A"}],"edges":[{"source":"a","target":"b"}]}}`, engine.CodeInconsistentGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/diagrams", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGenerateDiagramCache(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()
	s := newTestServer(t, Config{Store: c})

	body := `{"description":"Start -> Check stock? -> Ship -> End"}`
	first := do(t, s, http.MethodPost, "/v1/diagrams", body)
	second := do(t, s, http.MethodPost, "/v1/diagrams", body)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "miss", first.Header().Get("X-Exdraw-Cache"))
	assert.Equal(t, "hit", second.Header().Get("X-Exdraw-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get("ETag"), second.Header().Get("ETag"))
}

func TestClassify(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(t, s, http.MethodPost, "/v1/classify", `{"labels":["Kafka","API Gateway"," "]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out output.ClassifyOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Labels, 2)
	assert.Equal(t, "queue", out.Labels[0].Type)
	assert.Equal(t, "gateway", out.Labels[1].Type)
	assert.Equal(t, "edge", out.Labels[1].Layer)

	rec = do(t, s, http.MethodPost, "/v1/classify", `{"labels":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemes(t *testing.T) {
	rec := do(t, newTestServer(t, Config{}), http.MethodGet, "/v1/themes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out output.ThemesOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Themes, 4)
	assert.Equal(t, []string{"pro", "basic"}, out.Styles)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t, Config{}), http.MethodGet, "/v1/diagrams", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
