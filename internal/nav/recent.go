package nav

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/opennotesproject/notevault/internal/db"
)

// DefaultRecentLimit is the number of paths the recent list keeps.
const DefaultRecentLimit = 12

// DefaultNamespace is the storage key the recent list is saved under.
const DefaultNamespace = "opennotes_recent"

// Push moves path to the front of list, dropping any earlier occurrence, and
// caps the result at limit entries. list is not modified.
func Push(list []string, path string, limit int) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, path)
	for _, p := range list {
		if p != path {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Recent is the most-recent-first list of opened note paths. Every change is
// written to the database; a nil database keeps the list in memory only.
type Recent struct {
	mu        sync.Mutex
	db        *db.DB
	namespace string
	limit     int
	paths     []string
	logger    *slog.Logger
}

// LoadRecent restores the list stored under namespace. A stored value that
// cannot be decoded is discarded.
func LoadRecent(ctx context.Context, database *db.DB, namespace string, limit int, logger *slog.Logger) (*Recent, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recent{db: database, namespace: namespace, limit: limit, logger: logger}
	if database == nil {
		return r, nil
	}

	var raw string
	err := database.QueryRowContext(ctx, `SELECT paths FROM recent_notes WHERE namespace = ?`, namespace).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("loading recent notes: %w", err)
	}

	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		logger.Warn("discarding unreadable recent list", "namespace", namespace, "error", err)
		return r, nil
	}
	if len(paths) > limit {
		paths = paths[:limit]
	}
	r.paths = paths
	return r, nil
}

// Add moves path to the front and persists the list. The list in memory is
// updated even when saving fails.
func (r *Recent) Add(ctx context.Context, path string) ([]string, error) {
	if path == "" {
		return r.List(), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths = Push(r.paths, path, r.limit)
	if err := r.saveLocked(ctx, r.paths); err != nil {
		return r.copyLocked(), err
	}
	return r.copyLocked(), nil
}

// List returns the paths, most recent first.
func (r *Recent) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyLocked()
}

// Clear empties the list.
func (r *Recent) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.saveLocked(ctx, nil); err != nil {
		return err
	}
	r.paths = nil
	return nil
}

func (r *Recent) copyLocked() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

func (r *Recent) saveLocked(ctx context.Context, paths []string) error {
	if r.db == nil {
		return nil
	}
	if paths == nil {
		paths = []string{}
	}
	raw, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("encoding recent notes: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recent_notes (namespace, paths, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(namespace) DO UPDATE SET paths = excluded.paths, updated_at = excluded.updated_at`,
		r.namespace, string(raw))
	if err != nil {
		return fmt.Errorf("saving recent notes: %w", err)
	}
	return nil
}
