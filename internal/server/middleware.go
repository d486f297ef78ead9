package server

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// getTraceID returns the caller supplied request id or generates a UUID.
func getTraceID(r *http.Request) string {
	if id := r.Header.Get(requestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// traceMiddleware tags every request with a trace id, echoed in the
// response header, and attaches a logger carrying it to the context.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := getTraceID(r)
		w.Header().Set(requestIDHeader, traceID)

		logger := s.logger.With().Str("trace_id", traceID).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

// accessLog writes one structured line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
		logger := zerolog.Ctx(p.Request.Context())
		event := logger.Info()
		if p.StatusCode >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", p.Request.Method).
			Str("path", p.URL.Path).
			Int("status", p.StatusCode).
			Int("size", p.Size).
			Dur("elapsed", time.Since(p.TimeStamp)).
			Msg("HTTP request")
	})
}
