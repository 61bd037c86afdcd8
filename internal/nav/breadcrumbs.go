// Package nav derives breadcrumbs from note paths and keeps the persisted list
// of recently opened notes.
package nav

import (
	"strings"

	"github.com/opennotesproject/notevault/internal/vault"
)

// Crumb is one clickable segment of a path. Selecting it expands the sidebar
// to Path and, when IsNote is set, reopens the note.
type Crumb struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	IsNote bool   `json:"is_note"`
}

// Breadcrumbs splits path into cumulative segments. "Math/Algebra/linear.md"
// yields Math, Math/Algebra and Math/Algebra/linear.md labelled Math, Algebra
// and linear.
func Breadcrumbs(path string) []Crumb {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	segs := strings.Split(path, "/")
	crumbs := make([]Crumb, 0, len(segs))
	for i, seg := range segs {
		cum := strings.Join(segs[:i+1], "/")
		crumbs = append(crumbs, Crumb{
			Label:  vault.TrimExt(seg),
			Path:   cum,
			IsNote: vault.IsNotePath(cum),
		})
	}
	return crumbs
}
