package metrics

import (
	"net/http"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware returns middleware that records request count, latency,
// and in-flight gauge for every route.
func HTTPMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.InFlightInc()
			defer reg.InFlightDec()

			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			// Label by route pattern when the mux matched one, so
			// id-bearing paths like /api/jobs/{id} stay one series
			path := r.URL.Path
			if r.Pattern != "" {
				path = r.Pattern
				if _, p, ok := strings.Cut(path, " "); ok {
					path = p
				}
			}
			reg.RecordRequest(r.Method, path, rw.statusCode, time.Since(start).Seconds())
		})
	}
}
