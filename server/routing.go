package server

import (
	"net/http"
)

// setupRoutes configures all HTTP handlers on a dedicated mux.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return s.requestLogMiddleware(s.corsMiddleware(h))
	}

	mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket))
	mux.HandleFunc("/health", wrap(s.HandleHealth))
	mux.HandleFunc("/api/papers", wrap(s.HandlePapers))
	mux.HandleFunc("/api/hierarchy", wrap(s.HandleHierarchy))
	mux.HandleFunc("/api/visualization", wrap(s.HandleVisualization))
	mux.HandleFunc("/api/config", wrap(s.HandleConfig))
	mux.HandleFunc("/api/reload", wrap(s.HandleReload))
	mux.HandleFunc("/api/locator/check/", wrap(s.HandleLocatorCheck))

	return mux
}

// corsMiddleware adds CORS headers to HTTP responses using configured allowed origins
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// originAllowed checks an Origin header value against the configured list.
// Entries match by prefix so origins with ports are accepted.
func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.GetServerAllowedOrigins() {
		if origin == allowed || hasOriginPrefix(origin, allowed) {
			return true
		}
	}
	return false
}

func hasOriginPrefix(origin, allowed string) bool {
	if len(origin) <= len(allowed) {
		return false
	}
	return origin[:len(allowed)] == allowed && origin[len(allowed)] == ':'
}
