package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/opennotesproject/notevault/internal/diagrams"
)

type failingDiagrams struct {
	fail map[string]bool
}

func (f failingDiagrams) Render(_ context.Context, lang, source string) (string, error) {
	if f.fail[strings.TrimSpace(source)] {
		return "", errors.New("syntax error")
	}
	return `<div class="mermaid">` + html.EscapeString(source) + `</div>`, nil
}

type failingMath struct{}

func (failingMath) Typeset(root *html.Node) error {
	MathMarker{}.Typeset(root)
	return errors.New("typesetter crashed")
}

func render(t *testing.T, r *Renderer, src string) *Document {
	t.Helper()
	doc, err := r.Render(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return doc
}

func TestRenderMarkdown(t *testing.T) {
	doc := render(t, New(Options{}), "# Linear Maps\n\nSome **bold** text.\n\n- [x] done\n")

	for _, want := range []string{`<h1 id="linear-maps">Linear Maps</h1>`, "<strong>bold</strong>", `type="checkbox"`} {
		if !strings.Contains(doc.HTML, want) {
			t.Errorf("missing %q in:\n%s", want, doc.HTML)
		}
	}
}

func TestRenderSanitizes(t *testing.T) {
	doc := render(t, New(Options{}), "hello\n\n<script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>\n")
	if strings.Contains(doc.HTML, "<script") || strings.Contains(doc.HTML, "javascript:") {
		t.Errorf("unsafe markup survived:\n%s", doc.HTML)
	}
	if !strings.Contains(doc.HTML, "hello") {
		t.Errorf("content lost:\n%s", doc.HTML)
	}
}

func TestRenderFrontMatter(t *testing.T) {
	src := "---\ntitle: Intro\ntags: [physics, basics]\nmeta:\n  level: 1\n---\n# Body\n"
	doc := render(t, New(Options{}), src)

	if strings.Contains(doc.HTML, "title: Intro") {
		t.Errorf("front matter rendered:\n%s", doc.HTML)
	}
	if doc.FrontMatter["title"] != "Intro" {
		t.Errorf("front matter title = %v", doc.FrontMatter["title"])
	}
	if _, ok := doc.FrontMatter["meta"].(map[string]any); !ok {
		t.Errorf("nested front matter not normalized: %T", doc.FrontMatter["meta"])
	}
}

func TestRenderHighlightsCode(t *testing.T) {
	doc := render(t, New(Options{}), "```go\nfunc main() {}\n```\n")
	if !strings.Contains(doc.HTML, `class="chroma"`) {
		t.Errorf("expected chroma classes:\n%s", doc.HTML)
	}
}

func TestRenderDiagramsClient(t *testing.T) {
	src := "Before\n\n```mermaid\ngraph TD\n  A-->B\n```\n\nAfter\n"
	doc := render(t, New(Options{Diagrams: diagrams.ClientRenderer{}}), src)

	if !strings.Contains(doc.HTML, `<div class="mermaid">graph TD`) {
		t.Errorf("expected mermaid div:\n%s", doc.HTML)
	}
	if strings.Contains(doc.HTML, "language-mermaid") {
		t.Errorf("code block left in place:\n%s", doc.HTML)
	}
	if doc.Diagrams != 1 || doc.DiagramErrors != 0 {
		t.Errorf("diagrams = %d, errors = %d", doc.Diagrams, doc.DiagramErrors)
	}
}

func TestRenderDiagramFailureNotice(t *testing.T) {
	src := "# Title\n\n```mermaid\nbroken\n```\n\nMiddle paragraph.\n\n```mermaid\ngraph LR\n  X-->Y\n```\n\nClosing paragraph.\n"
	r := New(Options{Diagrams: failingDiagrams{fail: map[string]bool{"broken": true}}})
	doc := render(t, r, src)

	if n := strings.Count(doc.HTML, `class="diagram-error"`); n != 1 {
		t.Fatalf("expected exactly one failure notice, got %d:\n%s", n, doc.HTML)
	}
	for _, want := range []string{"Title", "Middle paragraph.", "Closing paragraph.", `<div class="mermaid">graph LR`} {
		if !strings.Contains(doc.HTML, want) {
			t.Errorf("missing %q:\n%s", want, doc.HTML)
		}
	}
	// The notice sits right after the failed block.
	if !strings.Contains(doc.HTML, "broken\n</code></pre>"+DiagramErrorNotice) {
		t.Errorf("notice not adjacent to failed block:\n%s", doc.HTML)
	}
	if doc.Diagrams != 1 || doc.DiagramErrors != 1 {
		t.Errorf("diagrams = %d, errors = %d", doc.Diagrams, doc.DiagramErrors)
	}
}

func TestRenderDiagramsOff(t *testing.T) {
	doc := render(t, New(Options{}), "```mermaid\ngraph TD\n```\n")
	if !strings.Contains(doc.HTML, `<pre><code class="language-mermaid">graph TD`) {
		t.Errorf("expected raw mermaid block:\n%s", doc.HTML)
	}
}

func TestRenderMath(t *testing.T) {
	r := New(Options{Math: MathMarker{}})
	doc := render(t, r, "Inline $a_1 * b_1$ and\n\n$$\\int_0^1 x\\,dx$$\n\nCode `$x$` stays.\n")

	if !strings.Contains(doc.HTML, `<span class="math math-inline" data-tex="a_1 * b_1">$a_1 * b_1$</span>`) {
		t.Errorf("inline math not marked:\n%s", doc.HTML)
	}
	if !strings.Contains(doc.HTML, `class="math math-display"`) {
		t.Errorf("display math not marked:\n%s", doc.HTML)
	}
	if strings.Contains(doc.HTML, "<em>") {
		t.Errorf("math was parsed as emphasis:\n%s", doc.HTML)
	}
	if !strings.Contains(doc.HTML, "<code>$x$</code>") {
		t.Errorf("math inside code was touched:\n%s", doc.HTML)
	}
}

func TestRenderMathFailureFallsBack(t *testing.T) {
	src := "Energy $E = mc^2$ here.\n"
	plain := render(t, New(Options{}), src)
	doc := render(t, New(Options{Math: failingMath{}}), src)

	if doc.HTML != plain.HTML {
		t.Errorf("failed typesetting changed output:\n%s\nvs\n%s", doc.HTML, plain.HTML)
	}
	if !strings.Contains(doc.HTML, "$E = mc^2$") {
		t.Errorf("raw delimiters lost:\n%s", doc.HTML)
	}
}

func TestMatchMath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		display bool
		ok      bool
	}{
		{"$x$", "$x$", false, true},
		{"$$x^2$$ tail", "$$x^2$$", true, true},
		{"$5 and $6", "", false, false},
		{"$ x$", "", false, false},
		{"$x $", "", false, false},
		{"$$$$", "", true, false},
		{"$a\\$b$", "$a\\$b$", false, true},
		{"$a\nb$", "", false, false},
		{"$", "", false, false},
	}
	for _, tt := range tests {
		end, display, ok := matchMath(tt.in, 0)
		if ok != tt.ok || display != tt.display {
			t.Errorf("matchMath(%q) = %v, %v; want %v, %v", tt.in, display, ok, tt.display, tt.ok)
			continue
		}
		if ok && tt.in[:end] != tt.want {
			t.Errorf("matchMath(%q) matched %q, want %q", tt.in, tt.in[:end], tt.want)
		}
	}
}

func TestChromaCSS(t *testing.T) {
	css, err := ChromaCSS(DefaultStyle)
	if err != nil {
		t.Fatalf("ChromaCSS: %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("unexpected css: %.200s", css)
	}
}
