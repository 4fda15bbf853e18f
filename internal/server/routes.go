// ABOUTME: HTTP route table and middleware for the link server
// ABOUTME: Uses chi so static routes take precedence over the catch-all slug routes

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/2389/lnk/internal/auth"
)

// Service routes live under /-/ because '-' can never appear in a slug.
const (
	pathHealthy = "/-/healthy"
	pathReady   = "/-/ready"
	pathAPI     = "/-/api/links"
)

// requestIDHeader carries the request id in both directions
const requestIDHeader = "X-Request-ID"

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Post("/", s.handleCreateForm)
	r.Get("/styles.css", s.handleStylesheet)

	r.Get(pathHealthy, s.handleHealth)
	r.Get(pathReady, s.handleReady)

	r.Route(pathAPI, func(r chi.Router) {
		r.Use(auth.HTTPAuthMiddleware(s.verifier))
		r.Post("/", s.handleAPICreate)
		r.Get("/{slug}", s.handleAPIGet)
	})

	r.Get("/info/{slug}", s.handleInfo)
	r.Get("/{slug}/qr", s.handleInfo)
	r.Get("/{slug}", s.handleRedirect)

	return r
}

// requestID tags each request with an id, reusing one supplied by a proxy.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

// logRequests logs one line per request after it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", requestIDFromContext(r.Context()),
		)
	})
}
