package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/bibgraph/bibgraph/ris"
	"github.com/bibgraph/bibgraph/version"
)

// HandleHealth reports server status and build info.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Get(),
	})
}

// HandlePapers returns the flat paper list, optionally filtered by a
// case-insensitive substring over title and abstract, optionally sorted.
func (s *Server) HandlePapers(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	result, err := s.cache.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	papers := result.Papers
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		papers = filterPapers(papers, search)
	}
	if sortKey := r.URL.Query().Get("sort"); sortKey != "" {
		papers = sortPapers(papers, sortKey)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"papers": papers,
		"count":  len(papers),
	})
}

// filterPapers keeps papers whose title or abstract contains the search
// string, case-insensitively. Order preserved.
func filterPapers(papers []*ris.Paper, search string) []*ris.Paper {
	needle := strings.ToLower(search)
	out := make([]*ris.Paper, 0, len(papers))
	for _, p := range papers {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Abstract), needle) {
			out = append(out, p)
		}
	}
	return out
}

// sortPapers returns a sorted copy. "year" sorts newest first with missing
// years last, ties by title; "title" sorts case-insensitively. Anything else
// keeps encounter order.
func sortPapers(papers []*ris.Paper, key string) []*ris.Paper {
	out := make([]*ris.Paper, len(papers))
	copy(out, papers)

	switch key {
	case "year":
		sort.SliceStable(out, func(i, j int) bool {
			yi, yj := out[i].Year, out[j].Year
			switch {
			case yi == nil && yj == nil:
				return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
			case yi == nil:
				return false
			case yj == nil:
				return true
			case *yi != *yj:
				return *yi > *yj
			}
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	case "title":
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	}
	return out
}

// HandleHierarchy returns the nested collection → query → tag mapping.
func (s *Server) HandleHierarchy(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	result, err := s.cache.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result.Hierarchy)
}

// HandleVisualization returns the laid-out graph.
func (s *Server) HandleVisualization(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	result, err := s.cache.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result.Graph)
}

// HandleConfig returns the resolved query table.
func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	result, err := s.cache.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"queries": result.Queries,
	})
}

// HandleReload invalidates the cache and rebuilds. Rebuilding dominates the
// system's cost, so requests beyond the limiter are rejected.
func (s *Server) HandleReload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !s.reloadLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "Reload rate limit exceeded")
		return
	}

	result, err := s.cache.Reload()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.BroadcastGraph(result.Graph)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "reloaded",
		"papers": len(result.Papers),
		"nodes":  len(result.Graph.Nodes),
	})
}

// HandleLocatorCheck reports content availability for one paper's locator.
func (s *Server) HandleLocatorCheck(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	parts := extractPathParts(r.URL.Path, "/api/locator/check/")
	if len(parts) != 1 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "Missing paper id")
		return
	}
	id := parts[0]

	result, err := s.cache.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	paper := findPaper(result.Papers, id)
	if paper == nil {
		writeError(w, http.StatusNotFound, "Paper not found")
		return
	}
	if paper.Locator == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"available": false})
		return
	}

	response := map[string]interface{}{
		"available": s.resolver.Available(paper.Locator),
	}
	if location, ok := s.resolver.Resolve(paper.Locator); ok {
		response["location"] = location
	}
	writeJSON(w, http.StatusOK, response)
}

// findPaper locates a paper by the string form of its identifier.
func findPaper(papers []*ris.Paper, id string) *ris.Paper {
	for _, p := range papers {
		if key, ok := p.IdentifierKey(); ok && key == id {
			return p
		}
	}
	return nil
}
