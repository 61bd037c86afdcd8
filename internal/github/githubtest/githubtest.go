// Package githubtest serves an in-memory repository over the same two HTTP
// surfaces the github client reads from, for use in tests.
package githubtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/opennotesproject/notevault/internal/github"
)

const (
	Owner  = "acme"
	Repo   = "notes"
	Branch = "main"
)

// Server is a fake GitHub backed by a map of file path to content.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string]string
	failList map[string]bool
	failRaw  map[string]bool
	requests int
}

// New starts a fake repository holding files. It is closed when the test ends.
func New(t testing.TB, files map[string]string) *Server {
	t.Helper()
	s := &Server{
		files:    make(map[string]string, len(files)),
		failList: make(map[string]bool),
		failRaw:  make(map[string]bool),
	}
	for p, body := range files {
		s.files[strings.Trim(p, "/")] = body
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/repos/", s.handleContents)
	mux.HandleFunc("/raw/", s.handleRaw)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Config returns a client configuration pointing at the fake.
func (s *Server) Config() github.Config {
	return github.Config{
		Owner:      Owner,
		Repo:       Repo,
		Branch:     Branch,
		APIBaseURL: s.URL + "/api",
		RawBaseURL: s.URL + "/raw",
	}
}

// Client returns a github client bound to the fake.
func (s *Server) Client() *github.Client {
	return github.NewClient(s.Config(), s.Server.Client())
}

// FailList makes listings of dir (repository path, "" for the top) return 500.
func (s *Server) FailList(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList[strings.Trim(dir, "/")] = true
}

// FailRaw makes raw fetches of file return 404.
func (s *Server) FailRaw(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRaw[strings.Trim(file, "/")] = true
}

// SetFile adds or replaces a file.
func (s *Server) SetFile(p, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[strings.Trim(p, "/")] = body
}

// Requests reports how many requests the fake has served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

type item struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

func (s *Server) handleContents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	prefix := "/api/repos/" + Owner + "/" + Repo + "/contents"
	if !strings.HasPrefix(r.URL.Path, prefix) || r.URL.Query().Get("ref") != Branch {
		http.NotFound(w, r)
		return
	}
	dir := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if s.failList[dir] {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		return
	}

	seen := make(map[string]bool)
	var items []item
	for p := range s.files {
		rest := p
		if dir != "" {
			if !strings.HasPrefix(p, dir+"/") {
				continue
			}
			rest = strings.TrimPrefix(p, dir+"/")
		}
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		typ := "file"
		if isDir {
			typ = "dir"
		}
		items = append(items, item{Name: name, Path: path.Join(dir, name), Type: typ})
	}
	if len(items) == 0 && dir != "" {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		return
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	w.Header().Set("Content-Type", "application/json")
	if items == nil {
		items = []item{}
	}
	json.NewEncoder(w).Encode(items)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	prefix := "/raw/" + Owner + "/" + Repo + "/" + Branch + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	p := strings.TrimPrefix(r.URL.Path, prefix)
	body, ok := s.files[p]
	if !ok || s.failRaw[p] {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(body))
}
