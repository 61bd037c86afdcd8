// Package render converts note Markdown into sanitized HTML with diagrams and
// math marked up for display.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/adrg/frontmatter"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/opennotesproject/notevault/internal/diagrams"
)

// DefaultStyle is the chroma style used for code highlighting.
const DefaultStyle = "github"

// Document is the rendered form of a note.
type Document struct {
	HTML          string         `json:"html"`
	FrontMatter   map[string]any `json:"front_matter,omitempty"`
	Diagrams      int            `json:"diagrams"`
	DiagramErrors int            `json:"diagram_errors"`
}

// Options configures a Renderer.
type Options struct {
	// Diagrams renders fenced mermaid blocks. Nil leaves them as code blocks.
	Diagrams diagrams.Renderer
	// Math marks up $...$ and $$...$$ spans. Nil leaves them as text.
	Math   Typesetter
	Style  string
	Logger *slog.Logger
}

// Renderer is safe for concurrent use.
type Renderer struct {
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	diagrams diagrams.Renderer
	math     Typesetter
	logger   *slog.Logger
}

// New builds a Renderer.
func New(opts Options) *Renderer {
	if opts.Style == "" {
		opts.Style = DefaultStyle
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&diagramExtension{},
			&mathExtension{},
			highlighting.NewHighlighting(
				highlighting.WithStyle(opts.Style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	return &Renderer{
		md:       md,
		policy:   newPolicy(),
		diagrams: opts.Diagrams,
		math:     opts.Math,
		logger:   opts.Logger,
	}
}

var classNames = regexp.MustCompile(`^[\w\- ]+$`)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classNames).OnElements("code", "pre", "span", "div")
	p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

// Render converts raw note content to HTML. Diagram and math failures never
// fail the render.
func (r *Renderer) Render(ctx context.Context, source []byte) (*Document, error) {
	meta, body := r.splitFrontMatter(source)

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	safe := r.policy.SanitizeBytes(buf.Bytes())

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(safe))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered html: %w", err)
	}
	content := doc.Find("body")

	out := &Document{FrontMatter: meta}
	out.Diagrams, out.DiagramErrors = r.renderDiagrams(ctx, content)

	out.HTML, err = content.Html()
	if err != nil {
		return nil, fmt.Errorf("serializing html: %w", err)
	}

	if r.math != nil && content.Length() > 0 {
		if err := r.math.Typeset(content.Get(0)); err != nil {
			r.logger.Debug("math typesetting failed", "error", err)
		} else if typeset, err := content.Html(); err == nil {
			out.HTML = typeset
		}
	}
	return out, nil
}

// splitFrontMatter strips a leading front matter block. Front matter that does
// not parse is left in the body.
func (r *Renderer) splitFrontMatter(source []byte) (map[string]any, []byte) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		r.logger.Debug("ignoring unparsable front matter", "error", err)
		return nil, source
	}
	if len(meta) == 0 {
		meta = nil
	}
	return normalize(meta), body
}

// normalize converts nested YAML maps into JSON-encodable maps.
func normalize(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalize(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}

// ChromaCSS returns the stylesheet for highlighted code blocks.
func ChromaCSS(style string) (string, error) {
	s := styles.Get(style)
	var b strings.Builder
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&b, s); err != nil {
		return "", fmt.Errorf("writing chroma css: %w", err)
	}
	return b.String(), nil
}
