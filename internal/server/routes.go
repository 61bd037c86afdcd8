package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opennotesproject/notevault/internal/github"
	"github.com/opennotesproject/notevault/internal/search"
	"github.com/opennotesproject/notevault/internal/session"
	"github.com/opennotesproject/notevault/internal/sidebar"
	"github.com/opennotesproject/notevault/internal/status"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/", s.handleIndex)
	r.Get("/static/style.css", s.serveAsset("web/style.css", "text/css; charset=utf-8"))
	r.Get("/static/app.js", s.serveAsset("web/app.js", "text/javascript; charset=utf-8"))
	r.Get("/static/chroma.css", s.handleChromaCSS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Post("/tree/toggle", s.handleToggle)
		r.Post("/tree/expand", s.handleExpand)
		r.Get("/notes", s.handleNote)
		r.Post("/notes", s.handleNewNote)
		r.Get("/search", s.handleSearch)
		r.Get("/recent", s.handleRecent)
		r.Delete("/recent", s.handleClearRecent)
		r.Post("/reload", s.handleReload)
		r.Get("/status", s.handleStatus)
	})
}

type pathRequest struct {
	Path string `json:"path"`
}

type treeResponse struct {
	Tree      sidebar.View `json:"tree"`
	HTML      string       `json:"html"`
	OpenPaths []string     `json:"open_paths"`
}

type toggleResponse struct {
	Path      string   `json:"path"`
	Open      bool     `json:"open"`
	OpenPaths []string `json:"open_paths"`
}

type noteResponse struct {
	*session.Note
	Recent    []string `json:"recent"`
	OpenPaths []string `json:"open_paths"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Hidden  bool            `json:"hidden"`
	Results []search.Result `json:"results"`
}

type statusResponse struct {
	Status status.Event  `json:"status"`
	Stats  session.Stats `json:"stats"`
	Repo   string        `json:"repo"`
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	sb, err := s.session.Sidebar()
	if err != nil {
		writeError(w, err)
		return
	}
	active := r.URL.Query().Get("active")
	if active == "" {
		if cur := s.session.Current(); cur != nil {
			active = cur.Path
		}
	}
	writeJSON(w, http.StatusOK, treeResponse{
		Tree:      sb.View(),
		HTML:      sb.HTML(active),
		OpenPaths: nonNil(sb.OpenPaths()),
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}
	sb, err := s.session.Sidebar()
	if err != nil {
		writeError(w, err)
		return
	}
	open, err := sb.Toggle(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Path: req.Path, Open: open, OpenPaths: nonNil(sb.OpenPaths())})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}
	sb, err := s.session.Sidebar()
	if err != nil {
		writeError(w, err)
		return
	}
	sb.ExpandPath(req.Path)
	writeJSON(w, http.StatusOK, map[string]any{"path": req.Path, "open_paths": nonNil(sb.OpenPaths())})
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}
	note, err := s.session.Open(r.Context(), path)
	if err != nil {
		s.logger.Warn("opening note failed", "path", path, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{
		Note:      note,
		Recent:    nonNil(s.session.Recent()),
		OpenPaths: s.openPaths(),
	})
}

func (s *Server) handleNewNote(w http.ResponseWriter, r *http.Request) {
	writeError(w, s.session.NewNote())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := s.session.Search(q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   q,
		Hidden:  results == nil,
		Results: nonNilResults(results),
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"recent": nonNil(s.session.Recent())})
}

func (s *Server) handleClearRecent(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearRecent(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"recent": {}})
}

// handleReload rebuilds the vault in the background; progress is visible on
// the status endpoints.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !s.reloading.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "reload already in progress"})
		return
	}
	go func() {
		defer s.reloading.Store(false)
		if err := s.session.Reload(context.Background()); err != nil {
			s.logger.Error("reload failed", "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reloading"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status: s.session.Status(),
		Stats:  s.session.Stats(),
		Repo:   s.cfg.RepoLabel,
	})
}

func (s *Server) handleChromaCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(s.chromaCSS))
}

func (s *Server) openPaths() []string {
	sb, err := s.session.Sidebar()
	if err != nil {
		return []string{}
	}
	return nonNil(sb.OpenPaths())
}

// errorStatus maps session and repository errors onto HTTP status codes.
func errorStatus(err error) int {
	var reqErr *github.RequestError
	switch {
	case errors.Is(err, session.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, session.ErrEmptyPath):
		return http.StatusBadRequest
	case errors.Is(err, sidebar.ErrUnknownBranch):
		return http.StatusNotFound
	case errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, github.ErrFetch), errors.Is(err, github.ErrListing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilResults(r []search.Result) []search.Result {
	if r == nil {
		return []search.Result{}
	}
	return r
}

