package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibgraph/bibgraph/config"
	"github.com/bibgraph/bibgraph/review"
	"github.com/bibgraph/bibgraph/ris"
)

const testExport = `TI  - Alpha study of transformers
PY  - 2021
AB  - Transformer models applied broadly.
RN  - Radiology
ID  - 1
L1  - internal-pdf://100/alpha.pdf
ER

TI  - Beta chest screening
PY  - 2023
RN  - CT
ID  - 2
ER

TI  - Gamma results without a year
RN  - CT
ID  - 3
ER
`

type stubResolver struct{}

func (stubResolver) Available(locator string) bool { return locator != "" }
func (stubResolver) Resolve(locator string) (string, bool) {
	return "https://files.example/alpha.pdf", true
}

func newTestServer(t *testing.T, resolver LocatorResolver) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pubmed_export.txt"), []byte(testExport), 0644))

	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins: []string{"http://localhost"},
		},
		Sources: config.SourcesConfig{
			Dir:             dir,
			HighlightPrefix: "most_cited",
			RelevancePrefix: "most_relevant",
		},
		Queries: map[string]config.QueryConfig{
			"Imaging": {Query: "ct OR radiology", Prefix: "pubmed"},
		},
	}
	return New(cfg, review.NewCache(cfg), resolver)
}

func doRequest(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)
	return rec
}

func decodePapers(t *testing.T, rec *httptest.ResponseRecorder) []*ris.Paper {
	t.Helper()
	var body struct {
		Papers []*ris.Paper `json:"papers"`
		Count  int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, len(body.Papers), body.Count)
	return body.Papers
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandlePapers(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/api/papers")

	require.Equal(t, http.StatusOK, rec.Code)
	papers := decodePapers(t, rec)
	require.Len(t, papers, 3)
	// Encounter order preserved without a sort parameter.
	assert.Equal(t, "Alpha study of transformers", papers[0].Title)
}

func TestHandlePapersSearch(t *testing.T) {
	s := newTestServer(t, nil)

	// Matches title or abstract, case-insensitively.
	papers := decodePapers(t, doRequest(s, http.MethodGet, "/api/papers?search=TRANSFORMER"))
	require.Len(t, papers, 1)
	assert.Equal(t, "Alpha study of transformers", papers[0].Title)

	papers = decodePapers(t, doRequest(s, http.MethodGet, "/api/papers?search=nomatch"))
	assert.Empty(t, papers)
}

func TestHandlePapersSort(t *testing.T) {
	s := newTestServer(t, nil)

	// Newest first, papers without a year last.
	papers := decodePapers(t, doRequest(s, http.MethodGet, "/api/papers?sort=year"))
	require.Len(t, papers, 3)
	assert.Equal(t, "Beta chest screening", papers[0].Title)
	assert.Equal(t, "Alpha study of transformers", papers[1].Title)
	assert.Equal(t, "Gamma results without a year", papers[2].Title)

	papers = decodePapers(t, doRequest(s, http.MethodGet, "/api/papers?sort=title"))
	assert.Equal(t, "Alpha study of transformers", papers[0].Title)
}

func TestHandlePapersMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodPost, "/api/papers")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHierarchy(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/api/hierarchy")

	require.Equal(t, http.StatusOK, rec.Code)
	var hierarchy map[string]map[string]map[string][]*ris.Paper
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hierarchy))
	require.Contains(t, hierarchy, "pubmed")
	assert.Len(t, hierarchy["pubmed"]["Imaging"]["CT"], 2)
}

func TestHandleVisualization(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/api/visualization")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Nodes)
	assert.NotEmpty(t, body.Edges)
}

func TestHandleConfig(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/api/config")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Imaging"`)
	assert.Contains(t, rec.Body.String(), `"ct OR radiology"`)
}

func TestHandleReload(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/api/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(s, http.MethodPost, "/api/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"reloaded"`)

	// The limiter allows a small burst, then rejects.
	doRequest(s, http.MethodPost, "/api/reload")
	rec = doRequest(s, http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHandleLocatorCheck(t *testing.T) {
	s := newTestServer(t, stubResolver{})

	rec := doRequest(s, http.MethodGet, "/api/locator/check/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/locator/check/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Paper 2 has no locator at all.
	rec = doRequest(s, http.MethodGet, "/api/locator/check/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)

	rec = doRequest(s, http.MethodGet, "/api/locator/check/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":true`)
	assert.Contains(t, rec.Body.String(), "alpha.pdf")
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/papers", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origins get no CORS grant.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost", true},
		{"http://localhost:5173", true},
		{"http://localhost.evil.example", false},
		{"http://evil.example", false},
	}

	for _, tt := range tests {
		if got := s.originAllowed(tt.origin); got != tt.want {
			t.Errorf("originAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
