// Package server serves the vault viewer UI and its JSON API.
package server

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/opennotesproject/notevault/internal/render"
	"github.com/opennotesproject/notevault/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port      int
	AllowAll  bool   // allow all CORS origins (dev mode)
	RepoLabel string // shown in the page header, e.g. owner/repo@main
	Style     string // chroma style for code blocks
}

// Server is the HTTP front end of a vault session.
type Server struct {
	cfg        Config
	session    *session.Session
	logger     *slog.Logger
	page       *template.Template
	chromaCSS  string
	reloading  atomic.Bool
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for sess.
func New(cfg Config, sess *session.Session, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Style == "" {
		cfg.Style = render.DefaultStyle
	}

	page, err := template.New("index.html").ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	css, err := render.ChromaCSS(cfg.Style)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		session:   sess,
		logger:    logger,
		page:      page,
		chromaCSS: css,
	}
	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The status stream is long-lived and stays outside the request timeout.
	r.Get("/ws/status", s.session.Hub().ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		s.registerRoutes(r)
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("notevault server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
