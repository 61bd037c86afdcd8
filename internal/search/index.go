// Package search holds the substring search index built from every note in a vault.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opennotesproject/notevault/internal/progress"
	"github.com/opennotesproject/notevault/internal/vault"
)

// DefaultLimit caps the number of results a query returns.
const DefaultLimit = 50

// Fetcher retrieves the raw content of a note.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Entry is an indexed note. Content is stored lower-cased.
type Entry struct {
	Path    string
	Title   string
	Content string

	title string
}

// Result is one search hit.
type Result struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Index is an append-only list of entries in walk order. It may be queried
// while Build is still running.
type Index struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
}

// NewIndex returns an empty index returning at most limit results per query.
func NewIndex(limit int) *Index {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Index{limit: limit}
}

// Options tunes Build.
type Options struct {
	Concurrency int
	Reporter    progress.Reporter
	Logger      *slog.Logger
}

// Build fetches every note under root and appends it to the index in walk
// order. A note whose fetch fails is logged and left out. Build only returns
// an error when ctx is cancelled.
func (ix *Index) Build(ctx context.Context, root *vault.Node, fetcher Fetcher, opts Options) error {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	notes := root.AllNotes()
	opts.Reporter.Start(len(notes))
	defer opts.Reporter.Finish()

	// Fetches complete out of order; each lands in its own slot and slots
	// are appended strictly in order as soon as the prefix is complete.
	type slot struct {
		entry Entry
		done  bool
		ok    bool
	}
	slots := make([]slot, len(notes))
	var (
		mu        sync.Mutex
		next      int
		completed int
	)
	flush := func() {
		for next < len(slots) && slots[next].done {
			if slots[next].ok {
				ix.add(slots[next].entry)
			}
			next++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, note := range notes {
		g.Go(func() error {
			body, err := fetcher.Fetch(gctx, note.Path)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			slots[i].done = true
			if err != nil {
				opts.Logger.Warn("skipping note in search index", "path", note.Path, "error", err)
			} else {
				slots[i].ok = true
				slots[i].entry = Entry{Path: note.Path, Title: note.Name, Content: strings.ToLower(string(body))}
			}
			completed++
			opts.Reporter.Update(completed, note.Path)
			flush()
			return nil
		})
	}
	return g.Wait()
}

func (ix *Index) add(e Entry) {
	e.title = strings.ToLower(e.Title)
	ix.mu.Lock()
	ix.entries = append(ix.entries, e)
	ix.mu.Unlock()
}

// Add appends an entry, lower-casing its content.
func (ix *Index) Add(path, title, content string) {
	ix.add(Entry{Path: path, Title: title, Content: strings.ToLower(content)})
}

// Len returns the number of indexed notes.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Search returns notes whose title or content contains q, ignoring case, in
// index order. A blank query returns nil.
func (ix *Index) Search(q string) []Result {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]Result, 0)
	for _, e := range ix.entries {
		if strings.Contains(e.title, q) || strings.Contains(e.Content, q) {
			results = append(results, Result{Path: e.Path, Title: e.Title})
			if len(results) == ix.limit {
				break
			}
		}
	}
	return results
}
