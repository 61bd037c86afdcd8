package sidebar

import (
	"fmt"
	"html"
	"strings"

	"github.com/opennotesproject/notevault/internal/vault"
)

// View is the JSON form of the sidebar served to the browser.
type View struct {
	Subjects []BranchView `json:"subjects"`
	Notes    []vault.Note `json:"notes"`
}

// BranchView is one folder and everything below it.
type BranchView struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Open     bool         `json:"open"`
	Branches []BranchView `json:"branches"`
	Notes    []vault.Note `json:"notes"`
}

// View returns a snapshot of the whole sidebar.
func (s *Sidebar) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{Subjects: s.viewLocked(s.subjects), Notes: s.notes}
}

func (s *Sidebar) viewLocked(paths []string) []BranchView {
	out := make([]BranchView, 0, len(paths))
	for _, p := range paths {
		b := s.branches[p]
		out = append(out, BranchView{
			Name:     b.Name,
			Path:     b.Path,
			Open:     b.open,
			Branches: s.viewLocked(b.Children),
			Notes:    b.Notes,
		})
	}
	return out
}

// HTML renders the sidebar as nested lists. The note at activePath is marked
// active. Closed branches are rendered too so the browser can open them
// without a round trip.
func (s *Sidebar) HTML(activePath string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteString(`<div class="subject-header">Subjects</div>` + "\n")
	b.WriteString(`<ul class="tree">` + "\n")
	for _, p := range s.subjects {
		s.renderBranch(&b, s.branches[p], activePath)
	}
	for _, n := range s.notes {
		renderNote(&b, n, 0, activePath)
	}
	b.WriteString("</ul>\n")
	return b.String()
}

func (s *Sidebar) renderBranch(b *strings.Builder, br *Branch, activePath string) {
	open := ""
	if br.open {
		open = " open"
	}
	fmt.Fprintf(b, `<li class="branch%s" data-path="%s"><div class="branch-title" style="padding-left:%dpx">📁 %s</div>`+"\n",
		open, html.EscapeString(br.Path), br.Depth*6, html.EscapeString(br.Name))
	fmt.Fprintf(b, `<ul class="branch-children%s">`+"\n", open)
	for _, p := range br.Children {
		s.renderBranch(b, s.branches[p], activePath)
	}
	for _, n := range br.Notes {
		renderNote(b, n, br.Depth+1, activePath)
	}
	b.WriteString("</ul>\n</li>\n")
}

func renderNote(b *strings.Builder, n vault.Note, depth int, activePath string) {
	active := ""
	if n.Path == activePath {
		active = " active"
	}
	fmt.Fprintf(b, `<li class="note-link%s" data-path="%s" style="padding-left:%dpx">%s</li>`+"\n",
		active, html.EscapeString(n.Path), depth*6, html.EscapeString(n.Name))
}
