package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/opennotesproject/notevault/internal/nav"
	"github.com/opennotesproject/notevault/internal/session"
)

//go:embed web
var webFS embed.FS

// pageData holds the data passed to the page template.
type pageData struct {
	Repo        string
	Status      string
	Sidebar     template.HTML
	Note        *session.Note
	Content     template.HTML
	Breadcrumbs []nav.Crumb
	Recent      []string
	Error       string
}

// handleIndex renders the page shell. A note named by ?note= is opened before
// rendering so the page is complete on first load.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Repo: s.cfg.RepoLabel}

	if path := r.URL.Query().Get("note"); path != "" {
		if note, err := s.session.Open(r.Context(), path); err != nil {
			s.logger.Warn("opening note from url failed", "path", path, "error", err)
			data.Error = "Could not load " + path + "."
		} else {
			data.Note = note
			data.Content = template.HTML(note.HTML)
			data.Breadcrumbs = note.Breadcrumbs
		}
	}

	active := ""
	if data.Note != nil {
		active = data.Note.Path
	}
	if sb, err := s.session.Sidebar(); err == nil {
		data.Sidebar = template.HTML(sb.HTML(active))
	}
	data.Recent = s.session.Recent()
	data.Status = s.session.Status().Message

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("rendering page", "error", err)
	}
}

func (s *Server) serveAsset(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := webFS.ReadFile(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(b)
	}
}
