package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opennotesproject/notevault/internal/config"
	"github.com/opennotesproject/notevault/internal/db"
	"github.com/opennotesproject/notevault/internal/diagrams"
	"github.com/opennotesproject/notevault/internal/github"
	"github.com/opennotesproject/notevault/internal/nav"
	"github.com/opennotesproject/notevault/internal/progress"
	"github.com/opennotesproject/notevault/internal/render"
	"github.com/opennotesproject/notevault/internal/status"
)

// GitHubConfig maps the vault configuration onto the repository client.
func GitHubConfig(cfg *config.Config) github.Config {
	return github.Config{
		Owner:      cfg.Owner,
		Repo:       cfg.Repo,
		Branch:     cfg.Branch,
		RootPath:   cfg.RootPath,
		APIBaseURL: cfg.APIBaseURL,
		RawBaseURL: cfg.RawBaseURL,
	}
}

// NewRenderer builds the note renderer configured by cfg.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *render.Renderer {
	return render.New(render.Options{
		Diagrams: diagrams.New(diagrams.Mode(cfg.Diagrams.Mode), cfg.Diagrams.KrokiURL, nil),
		Math:     render.MathMarker{},
		Logger:   logger,
	})
}

// FromConfig wires a Session for cfg. A nil database keeps the recent list in
// memory. reporter may be nil.
func FromConfig(ctx context.Context, cfg *config.Config, database *db.DB, reporter progress.Reporter, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	recent, err := nav.LoadRecent(ctx, database, cfg.RecentNamespace, cfg.RecentLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("loading recent notes: %w", err)
	}
	return New(Options{
		Repo:           github.NewClient(GitHubConfig(cfg), nil),
		Renderer:       NewRenderer(cfg, logger),
		Recent:         recent,
		Hub:            status.NewHub(logger),
		Excludes:       cfg.Exclude,
		MaxConcurrency: cfg.MaxConcurrency,
		SearchLimit:    cfg.SearchLimit,
		Reporter:       reporter,
		Logger:         logger,
	}), nil
}
