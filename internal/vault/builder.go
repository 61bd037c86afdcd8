package vault

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/opennotesproject/notevault/internal/github"
)

// Lister lists the immediate entries of a repository directory.
type Lister interface {
	List(ctx context.Context, path string) ([]github.Entry, error)
}

// Builder walks a repository into a Node tree.
type Builder struct {
	lister      Lister
	excludes    []string
	concurrency int
	logger      *slog.Logger
}

// NewBuilder creates a builder. concurrency bounds the number of sibling
// directories listed at once; values below 1 mean 1.
func NewBuilder(lister Lister, excludes []string, concurrency int, logger *slog.Logger) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{lister: lister, excludes: excludes, concurrency: concurrency, logger: logger}
}

// Build lists dir and every directory below it. Any listing failure aborts
// the whole build and no partial tree is returned.
func (b *Builder) Build(ctx context.Context, dir string) (*Node, error) {
	dir = strings.Trim(dir, "/")
	entries, err := b.lister.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("building %q: %w", displayDir(dir), err)
	}

	node := NewNode()
	var subdirs []github.Entry
	for _, e := range entries {
		rel := e.Path
		if rel == "" {
			rel = path.Join(dir, e.Name)
		}
		switch {
		case e.Type == github.TypeDir:
			if Excluded(rel, true, b.excludes) {
				b.logger.Debug("skipping excluded folder", "path", rel)
				continue
			}
			subdirs = append(subdirs, github.Entry{Name: e.Name, Path: rel, Type: e.Type})
		case e.Type == github.TypeFile && IsNotePath(e.Name):
			if Excluded(rel, false, b.excludes) {
				continue
			}
			node.Notes = append(node.Notes, Note{Name: TrimExt(e.Name), Path: rel})
		}
	}

	children := make([]*Node, len(subdirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, sub := range subdirs {
		g.Go(func() error {
			child, err := b.Build(gctx, sub.Path)
			if err != nil {
				return err
			}
			children[i] = child
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, sub := range subdirs {
		node.Folders[sub.Name] = children[i]
	}
	return node, nil
}

func displayDir(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}
