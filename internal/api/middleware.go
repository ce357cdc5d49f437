package api

import (
	"net/http"
	"time"

	"github.com/jwulff/chartnote/internal/logger"
)

// LoggingMiddleware logs every request with its status and duration.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrappedWriter := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrappedWriter, r)

			log.Info(r.Context(), "Request: %s %s from %s -> %d (%s)",
				r.Method, r.URL.Path, r.RemoteAddr, wrappedWriter.statusCode, time.Since(start).Round(time.Millisecond))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps the event stream working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
