// Package session holds the state of one vault viewing session: the tree, the
// sidebar, the search index, the open note and the recent list.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/opennotesproject/notevault/internal/nav"
	"github.com/opennotesproject/notevault/internal/progress"
	"github.com/opennotesproject/notevault/internal/render"
	"github.com/opennotesproject/notevault/internal/search"
	"github.com/opennotesproject/notevault/internal/sidebar"
	"github.com/opennotesproject/notevault/internal/status"
	"github.com/opennotesproject/notevault/internal/vault"
)

var (
	// ErrNotImplemented is returned by hooks reserved for editing integrations.
	ErrNotImplemented = errors.New("create note flow: integrate your editor here")
	// ErrNotReady is returned when the vault has not been loaded yet.
	ErrNotReady = errors.New("vault not loaded")
	// ErrEmptyPath is returned when opening a note without a path.
	ErrEmptyPath = errors.New("note path is empty")
)

// DefaultTopic labels notes stored at the vault root.
const DefaultTopic = "Notes"

// Repository is the read side of the remote notes repository.
type Repository interface {
	vault.Lister
	search.Fetcher
}

// Note is the currently open document.
type Note struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Topic       string         `json:"topic"`
	Content     string         `json:"-"`
	HTML        string         `json:"html"`
	FrontMatter map[string]any `json:"front_matter,omitempty"`
	Breadcrumbs []nav.Crumb    `json:"breadcrumbs"`
	OpenedAt    time.Time      `json:"opened_at"`
}

// Options wires a Session to its collaborators.
type Options struct {
	Repo           Repository
	Renderer       *render.Renderer
	Recent         *nav.Recent
	Hub            *status.Hub
	Excludes       []string
	MaxConcurrency int
	SearchLimit    int
	// Reporter receives index build progress in addition to the hub.
	Reporter progress.Reporter
	Logger   *slog.Logger
}

// Session is safe for concurrent use. The tree, sidebar and index are
// replaced together by Init and Reload.
type Session struct {
	repo     Repository
	builder  *vault.Builder
	renderer *render.Renderer
	recent   *nav.Recent
	hub      *status.Hub
	opts     Options
	logger   *slog.Logger

	mu       sync.RWMutex
	tree     *vault.Node
	sidebar  *sidebar.Sidebar
	index    *search.Index
	current  *Note
	loadedAt time.Time
}

// New creates a Session. Nothing is fetched until Init.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Hub == nil {
		opts.Hub = status.NewHub(opts.Logger)
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New(render.Options{Logger: opts.Logger})
	}
	if opts.Recent == nil {
		opts.Recent, _ = nav.LoadRecent(context.Background(), nil, "", 0, opts.Logger)
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Session{
		repo:     opts.Repo,
		builder:  vault.NewBuilder(opts.Repo, opts.Excludes, opts.MaxConcurrency, opts.Logger),
		renderer: opts.Renderer,
		recent:   opts.Recent,
		hub:      opts.Hub,
		opts:     opts,
		logger:   opts.Logger,
	}
}

// Init builds the tree, the sidebar and the search index. On a tree failure
// the previous tree, if any, is kept and the status reports the error.
func (s *Session) Init(ctx context.Context) error {
	start := time.Now()
	s.hub.Set(status.PhaseFetching, status.FetchingVault)

	tree, err := s.builder.Build(ctx, "")
	if err != nil {
		s.hub.Set(status.PhaseError, status.ErrorLoadingVault)
		s.logger.Error("loading vault failed", "error", err)
		return fmt.Errorf("loading vault: %w", err)
	}

	// The index is published before it is built; queries in the meantime
	// see fewer results.
	index := search.NewIndex(s.opts.SearchLimit)
	sb := sidebar.New(tree)
	s.mu.Lock()
	// A note opened before the tree existed still gets its branches expanded.
	if s.current != nil {
		sb.ExpandPath(s.current.Path)
	}
	s.tree = tree
	s.sidebar = sb
	s.index = index
	s.loadedAt = time.Now()
	s.mu.Unlock()
	s.logger.Info("vault tree loaded", "notes", tree.Count(), "duration", time.Since(start).Round(time.Millisecond))

	s.hub.Set(status.PhaseIndexing, status.IndexingNotes)
	reporter := progress.Multi{s.hub.Reporter()}
	if s.opts.Reporter != nil {
		reporter = append(reporter, s.opts.Reporter)
	}
	err = index.Build(ctx, tree, s.repo, search.Options{
		Concurrency: s.opts.MaxConcurrency,
		Reporter:    reporter,
		Logger:      s.logger,
	})
	if err != nil {
		s.hub.Set(status.PhaseError, status.ErrorLoadingVault)
		return fmt.Errorf("indexing vault: %w", err)
	}

	s.hub.Set(status.PhaseReady, status.Ready(index.Len()))
	s.logger.Info("vault indexed", "indexed", index.Len(), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// Reload rebuilds the tree, sidebar and index from scratch.
func (s *Session) Reload(ctx context.Context) error {
	return s.Init(ctx)
}

// Open fetches and renders the note at path and makes it the current note.
// On failure the current note is left as it was.
func (s *Session) Open(ctx context.Context, path string) (*Note, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, ErrEmptyPath
	}
	s.hub.Set(status.PhaseLoading, status.Loading)

	raw, err := s.repo.Fetch(ctx, path)
	if err != nil {
		s.hub.Set(status.PhaseError, status.ErrorLoadingNote)
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	doc, err := s.renderer.Render(ctx, raw)
	if err != nil {
		s.hub.Set(status.PhaseError, status.ErrorLoadingNote)
		return nil, fmt.Errorf("rendering %s: %w", path, err)
	}

	note := &Note{
		Path:        path,
		Title:       TitleOf(path),
		Topic:       TopicOf(path),
		Content:     string(raw),
		HTML:        doc.HTML,
		FrontMatter: doc.FrontMatter,
		Breadcrumbs: nav.Breadcrumbs(path),
		OpenedAt:    time.Now(),
	}

	s.mu.Lock()
	s.current = note
	sb := s.sidebar
	s.mu.Unlock()

	if sb != nil {
		sb.ExpandPath(path)
	}
	if _, err := s.recent.Add(ctx, path); err != nil {
		s.logger.Warn("saving recent notes failed", "path", path, "error", err)
	}

	s.hub.Set(status.PhaseLoaded, status.Loaded)
	return note, nil
}

// Raw fetches the unrendered content of a note without changing the session.
func (s *Session) Raw(ctx context.Context, path string) ([]byte, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, ErrEmptyPath
	}
	return s.repo.Fetch(ctx, path)
}

// TitleOf returns the display title of a note path: its last segment without
// the .md extension.
func TitleOf(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return vault.TrimExt(path)
}

// TopicOf returns the first folder of a note path, or DefaultTopic for notes
// at the vault root.
func TopicOf(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.Index(path, "/"); i > 0 {
		return path[:i]
	}
	return DefaultTopic
}

// Current returns the open note, or nil.
func (s *Session) Current() *Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Tree returns the vault tree.
func (s *Session) Tree() (*vault.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return nil, ErrNotReady
	}
	return s.tree, nil
}

// Sidebar returns the sidebar for the current tree.
func (s *Session) Sidebar() (*sidebar.Sidebar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sidebar == nil {
		return nil, ErrNotReady
	}
	return s.sidebar, nil
}

// Search queries the index. A blank query returns no results.
func (s *Session) Search(q string) ([]search.Result, error) {
	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()
	if index == nil {
		return nil, ErrNotReady
	}
	return index.Search(q), nil
}

// Recent returns the recently opened paths, most recent first.
func (s *Session) Recent() []string {
	return s.recent.List()
}

// ClearRecent empties the recent list.
func (s *Session) ClearRecent(ctx context.Context) error {
	return s.recent.Clear(ctx)
}

// NewNote is the hook for creating notes. Editing is not supported.
func (s *Session) NewNote() error {
	return ErrNotImplemented
}

// Status returns the current status event.
func (s *Session) Status() status.Event {
	return s.hub.Current()
}

// Hub returns the status hub.
func (s *Session) Hub() *status.Hub {
	return s.hub
}

// Stats summarizes the loaded vault.
type Stats struct {
	Notes    int       `json:"notes"`
	Indexed  int       `json:"indexed"`
	Folders  int       `json:"folders"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Stats returns counts for the loaded vault.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{LoadedAt: s.loadedAt}
	if s.tree != nil {
		st.Notes = s.tree.Count()
	}
	if s.sidebar != nil {
		st.Folders = s.sidebar.Len()
	}
	if s.index != nil {
		st.Indexed = s.index.Len()
	}
	return st
}
