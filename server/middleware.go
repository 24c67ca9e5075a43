package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// requestLogMiddleware tags every request with a short request id and logs
// it with timing at debug level.
func (s *Server) requestLogMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next(w, r)

		s.logger.Debugw("Request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	}
}
