// ABOUTME: HTTP handlers for link creation, redirects, info pages and health checks
// ABOUTME: Maps store results to status codes and escalates store failures as fatal

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/2389/lnk/internal/auth"
	"github.com/2389/lnk/internal/store"
	"github.com/2389/lnk/internal/web"
)

// maxFormBytes bounds the create request body
const maxFormBytes = 64 << 10

// CreateLinkRequest is the JSON body accepted by POST /-/api/links
type CreateLinkRequest struct {
	URI  string `json:"uri"`
	Slug string `json:"slug,omitempty"`
}

// LinkResponse describes a stored link
type LinkResponse struct {
	Slug      string     `json:"slug"`
	Link      string     `json:"link"`
	Target    string     `json:"target"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ParseTarget validates a raw target URI from a request.
func ParseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("uri is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid uri: %w", err)
	}
	return u, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := web.RenderIndex(&buf, s.config.Links.Domain); err != nil {
		s.logger.Error("rendering index", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	_, _ = w.Write(web.Stylesheet)
}

// handleCreateForm handles the index form: fields uri, slug and token.
func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if _, err := s.verifier.Verify(r.PostForm.Get("token")); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	target, err := ParseTarget(r.PostForm.Get("uri"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slug, status, err := s.putLink(r.Context(), r.PostForm.Get("slug"), target)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	http.Redirect(w, r, "/info/"+slug, http.StatusSeeOther)
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	target, err := ParseTarget(req.URI)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	slug, status, err := s.putLink(r.Context(), req.Slug, target)
	if err != nil {
		s.sendJSONError(w, status, err.Error())
		return
	}

	s.logger.Info("link created via api", "slug", slug, "subject", auth.SubjectFromContext(r.Context()))
	s.sendJSON(w, http.StatusCreated, LinkResponse{
		Slug:   slug,
		Link:   s.shortLink(slug),
		Target: target.String(),
	})
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	link, err := s.store.GetLink(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "link not found")
		return
	}
	if isCanceled(err) {
		s.sendJSONError(w, http.StatusServiceUnavailable, "request canceled")
		return
	}
	if err != nil {
		s.storeFailure(w, err)
		return
	}

	created := link.CreatedAt
	s.sendJSON(w, http.StatusOK, LinkResponse{
		Slug:      link.Slug,
		Link:      s.shortLink(link.Slug),
		Target:    link.Target.String(),
		CreatedAt: &created,
	})
}

// handleRedirect sends the client to the stored target with a temporary redirect.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	target, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Location", target.String())
	w.WriteHeader(http.StatusTemporaryRedirect)
}

// handleInfo renders the short link with a QR code for its target.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	target, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := web.RenderInfo(&buf, s.config.Links.Domain, chi.URLParam(r, "slug"), target); err != nil {
		s.logger.Error("rendering info page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintf(w, "store unavailable: %v", err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// lookup resolves the slug route parameter. It writes the 404 or 500 itself and
// reports whether the caller should continue.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*url.URL, bool) {
	target, err := s.store.Get(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if isCanceled(err) {
		s.logger.Debug("lookup canceled", "error", err)
		http.Error(w, "request canceled", http.StatusServiceUnavailable)
		return nil, false
	}
	if err != nil {
		s.storeFailure(w, err)
		return nil, false
	}
	return target, true
}

// putLink stores target and returns the slug, or the status and error to report.
func (s *Server) putLink(ctx context.Context, custom string, target *url.URL) (string, int, error) {
	slug, err := s.store.Put(ctx, custom, target, s.config.Links.SlugLength)
	switch {
	case err == nil:
		return slug, http.StatusOK, nil
	case errors.Is(err, store.ErrKeyspaceExhausted):
		s.logger.Warn("slug keyspace exhausted", "length", s.config.Links.SlugLength, "error", err)
		return "", http.StatusServiceUnavailable, errors.New("no free slug available, try a custom slug")
	case isCanceled(err):
		return "", http.StatusServiceUnavailable, errors.New("request canceled")
	default:
		s.fail(err)
		return "", http.StatusInternalServerError, errors.New("internal error")
	}
}

// isCanceled reports whether err comes from the request context rather than the store.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// storeFailure answers 500 and escalates err.
func (s *Server) storeFailure(w http.ResponseWriter, err error) {
	http.Error(w, "internal error", http.StatusInternalServerError)
	s.fail(err)
}

func (s *Server) shortLink(slug string) string {
	return s.config.Links.Domain + "/" + slug
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}
