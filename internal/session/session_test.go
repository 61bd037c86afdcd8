package session

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/opennotesproject/notevault/internal/config"
	"github.com/opennotesproject/notevault/internal/db"
	"github.com/opennotesproject/notevault/internal/diagrams"
	"github.com/opennotesproject/notevault/internal/github"
	"github.com/opennotesproject/notevault/internal/github/githubtest"
	"github.com/opennotesproject/notevault/internal/nav"
	"github.com/opennotesproject/notevault/internal/render"
	"github.com/opennotesproject/notevault/internal/status"
)

func newTestSession(t *testing.T, files map[string]string) (*Session, *githubtest.Server) {
	t.Helper()
	srv := githubtest.New(t, files)

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	recent, err := nav.LoadRecent(context.Background(), database, nav.DefaultNamespace, nav.DefaultRecentLimit, nil)
	if err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}

	s := New(Options{
		Repo:           srv.Client(),
		Renderer:       render.New(render.Options{Diagrams: diagrams.ClientRenderer{}, Math: render.MathMarker{}}),
		Recent:         recent,
		MaxConcurrency: 4,
		SearchLimit:    50,
	})
	return s, srv
}

func TestPhysicsScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, map[string]string{"Physics/intro.md": "# Intro\n\nForces and motion."})

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	tree, err := s.Tree()
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if got := tree.SortedFolders(); !reflect.DeepEqual(got, []string{"Physics"}) {
		t.Fatalf("top-level folders = %v", got)
	}
	physics := tree.Folders["Physics"]
	if len(physics.Notes) != 1 || physics.Notes[0].Name != "intro" || physics.Notes[0].Path != "Physics/intro.md" {
		t.Fatalf("unexpected Physics notes: %+v", physics.Notes)
	}

	sb, err := s.Sidebar()
	if err != nil {
		t.Fatalf("Sidebar: %v", err)
	}
	if !sb.IsOpen("Physics") {
		t.Error("first subject should be expanded")
	}
	if got := s.Status().Message; got != "Ready · 1 notes indexed" {
		t.Errorf("status = %q", got)
	}

	note, err := s.Open(ctx, "Physics/intro.md")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if note.Title != "intro" || note.Topic != "Physics" {
		t.Errorf("title/topic = %q/%q", note.Title, note.Topic)
	}
	if !strings.Contains(note.HTML, "Forces and motion.") {
		t.Errorf("unexpected html %q", note.HTML)
	}
	if got := s.Recent(); !reflect.DeepEqual(got, []string{"Physics/intro.md"}) {
		t.Errorf("recent = %v", got)
	}
	if len(note.Breadcrumbs) != 2 || !note.Breadcrumbs[1].IsNote {
		t.Errorf("breadcrumbs = %+v", note.Breadcrumbs)
	}
	if s.Status().Message != status.Loaded {
		t.Errorf("status = %q", s.Status().Message)
	}
	if s.Current() != note {
		t.Error("current note not updated")
	}
}

func TestOpenFailureKeepsCurrentNote(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, map[string]string{
		"Math/calculus.md": "limits",
		"Math/broken.md":   "x",
	})
	srv.FailRaw("Math/broken.md")
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	first, err := s.Open(ctx, "Math/calculus.md")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = s.Open(ctx, "Math/broken.md")
	if !errors.Is(err, github.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if s.Current() != first {
		t.Error("current note changed after a failed open")
	}
	if s.Status().Message != status.ErrorLoadingNote {
		t.Errorf("status = %q", s.Status().Message)
	}
	if got := s.Recent(); !reflect.DeepEqual(got, []string{"Math/calculus.md"}) {
		t.Errorf("recent = %v", got)
	}
}

func TestInitFailure(t *testing.T) {
	s, srv := newTestSession(t, map[string]string{"A/a.md": "a"})
	srv.FailList("A")

	err := s.Init(context.Background())
	if !errors.Is(err, github.ErrListing) {
		t.Fatalf("expected ErrListing, got %v", err)
	}
	if s.Status().Message != status.ErrorLoadingVault {
		t.Errorf("status = %q", s.Status().Message)
	}
	if _, err := s.Tree(); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
	if _, err := s.Search("a"); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestReloadFailureKeepsTree(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, map[string]string{"A/a.md": "alpha"})
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	before, _ := s.Tree()

	srv.FailList("")
	if err := s.Reload(ctx); err == nil {
		t.Fatal("expected reload error")
	}
	after, _ := s.Tree()
	if after != before {
		t.Error("tree replaced after failed reload")
	}
}

func TestReloadPicksUpChanges(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, map[string]string{"A/a.md": "alpha"})
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	srv.SetFile("B/b.md", "beta")
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	results, err := s.Search("beta")
	if err != nil || len(results) != 1 || results[0].Path != "B/b.md" {
		t.Errorf("Search after reload = %+v, %v", results, err)
	}
	if st := s.Stats(); st.Notes != 2 || st.Indexed != 2 || st.Folders != 2 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestOpenRendersDiagramFailure(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, map[string]string{
		"Notes/flow.md": "Intro text.\n\n```mermaid\n   \n```\n\nOutro text.\n",
	})
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	note, err := s.Open(ctx, "Notes/flow.md")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n := strings.Count(note.HTML, "Mermaid diagram failed to render."); n != 1 {
		t.Errorf("expected one failure notice, got %d:\n%s", n, note.HTML)
	}
	if !strings.Contains(note.HTML, "Intro text.") || !strings.Contains(note.HTML, "Outro text.") {
		t.Errorf("document content lost:\n%s", note.HTML)
	}
}

func TestTitleAndTopic(t *testing.T) {
	tests := []struct {
		path, title, topic string
	}{
		{"Physics/intro.md", "intro", "Physics"},
		{"Math/Algebra/linear.md", "linear", "Math"},
		{"README.md", "README", DefaultTopic},
		{"/Notes.MD", "Notes", DefaultTopic},
	}
	for _, tt := range tests {
		if got := TitleOf(tt.path); got != tt.title {
			t.Errorf("TitleOf(%q) = %q, want %q", tt.path, got, tt.title)
		}
		if got := TopicOf(tt.path); got != tt.topic {
			t.Errorf("TopicOf(%q) = %q, want %q", tt.path, got, tt.topic)
		}
	}
}

func TestNewNote(t *testing.T) {
	s, _ := newTestSession(t, nil)
	if err := s.NewNote(); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	s, _ := newTestSession(t, nil)
	if _, err := s.Open(context.Background(), "/"); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
}

func TestDefaultRendererMarksBrokenDiagram(t *testing.T) {
	ctx := context.Background()
	repo := githubtest.New(t, map[string]string{
		"Notes/flow.md": "before\n\n```mermaid\ngraph TD A -->>>> ((( broken\n```\n\nmiddle\n\n```mermaid\ngraph LR\n  X-->Y\n```\n\nafter\n",
	})
	s := New(Options{
		Repo:     repo.Client(),
		Renderer: NewRenderer(config.DefaultConfig(), nil),
	})

	note, err := s.Open(ctx, "Notes/flow.md")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n := strings.Count(note.HTML, render.DiagramErrorNotice); n != 1 {
		t.Fatalf("expected one failure notice, got %d:\n%s", n, note.HTML)
	}
	if !strings.Contains(note.HTML, "broken\n</code></pre>"+render.DiagramErrorNotice) {
		t.Errorf("notice not next to the broken block:\n%s", note.HTML)
	}
	if !strings.Contains(note.HTML, `<div class="mermaid">graph LR`) {
		t.Errorf("valid diagram not handed to mermaid:\n%s", note.HTML)
	}
	for _, want := range []string{"before", "middle", "after"} {
		if !strings.Contains(note.HTML, want) {
			t.Errorf("missing %q:\n%s", want, note.HTML)
		}
	}
}

func TestOpenBeforeInitExpandsSidebar(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, map[string]string{
		"A/a.md":   "a",
		"B/C/c.md": "c",
		"B/b.md":   "b",
	})

	if _, err := s.Open(ctx, "B/C/c.md"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sb, err := s.Sidebar()
	if err != nil {
		t.Fatalf("Sidebar: %v", err)
	}
	if got, want := sb.OpenPaths(), []string{"B", "B/C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("OpenPaths = %v, want %v", got, want)
	}
	if cur := s.Current(); cur == nil || cur.Path != "B/C/c.md" {
		t.Errorf("current note = %+v", cur)
	}
}
