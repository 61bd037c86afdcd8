package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Typesetter marks up delimited math in a rendered HTML subtree in place.
type Typesetter interface {
	Typeset(root *html.Node) error
}

// MathMarker wraps $$...$$ and $...$ spans in text in
// <span class="math math-display|math-inline" data-tex="..."> elements for
// KaTeX to pick up in the browser. The delimiters stay in the span text.
type MathMarker struct{}

var mathSkip = map[atom.Atom]bool{
	atom.Code:     true,
	atom.Pre:      true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Svg:      true,
	atom.Textarea: true,
}

func (MathMarker) Typeset(root *html.Node) error {
	var texts []*html.Node
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if mathSkip[n.DataAtom] || hasClass(n, "math") || hasClass(n, "mermaid") || hasClass(n, "diagram") {
				return
			}
		}
		if n.Type == html.TextNode {
			if strings.Contains(n.Data, "$") {
				texts = append(texts, n)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)

	for _, t := range texts {
		markMath(t)
	}
	return nil
}

// markMath splits a text node around the math spans it contains.
func markMath(t *html.Node) {
	s := t.Data
	var pieces []*html.Node
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '$':
			end, display, ok := matchMath(s, i)
			if !ok {
				if display {
					i++
				}
				continue
			}
			if i > last {
				pieces = append(pieces, &html.Node{Type: html.TextNode, Data: s[last:i]})
			}
			pieces = append(pieces, mathNode(s[i:end], display))
			last = end
			i = end - 1
		}
	}
	if len(pieces) == 0 {
		return
	}
	if last < len(s) {
		pieces = append(pieces, &html.Node{Type: html.TextNode, Data: s[last:]})
	}

	parent := t.Parent
	for _, p := range pieces {
		parent.InsertBefore(p, t)
	}
	parent.RemoveChild(t)
}

func mathNode(raw string, display bool) *html.Node {
	class, tex := "math math-inline", raw[1:len(raw)-1]
	if display {
		class, tex = "math math-display", raw[2:len(raw)-2]
	}
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: class},
			{Key: "data-tex", Val: strings.TrimSpace(tex)},
		},
	}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: raw})
	return span
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// matchMath reports whether a math span starts at s[i], which must be '$'.
// It returns the index just past the closing delimiter. Inline spans must not
// start or end with a space, must close on the same line, and must not be
// followed by a digit, so "$5 and $6" is left alone.
func matchMath(s string, i int) (end int, display bool, ok bool) {
	if i+1 < len(s) && s[i+1] == '$' {
		rest := s[i+2:]
		j := strings.Index(rest, "$$")
		if j <= 0 || strings.TrimSpace(rest[:j]) == "" {
			return 0, true, false
		}
		return i + 2 + j + 2, true, true
	}

	if i+1 >= len(s) || isSpace(s[i+1]) {
		return 0, false, false
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '\n':
			return 0, false, false
		case '$':
			if isSpace(s[j-1]) {
				continue
			}
			if j+1 < len(s) && s[j+1] >= '0' && s[j+1] <= '9' {
				return 0, false, false
			}
			return j + 1, false, true
		}
	}
	return 0, false, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

var mathKind = ast.NewNodeKind("Math")

// mathSpan keeps the raw text of a math span away from emphasis and escape
// processing. It renders back to its source text.
type mathSpan struct {
	ast.BaseInline
	Raw []byte
}

func (n *mathSpan) Kind() ast.NodeKind {
	return mathKind
}

func (n *mathSpan) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Raw": string(n.Raw)}, nil)
}

type mathExtension struct{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&mathParser{}, 150),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mathHTMLRenderer{}, 150),
	))
}

type mathParser struct{}

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	end, _, ok := matchMath(string(line), 0)
	if !ok {
		return nil
	}
	raw := make([]byte, end)
	copy(raw, line[:end])
	block.Advance(end)
	return &mathSpan{Raw: raw}
}

type mathHTMLRenderer struct{}

func (r *mathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(mathKind, r.renderMath)
}

func (r *mathHTMLRenderer) renderMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.Write(util.EscapeHTML(node.(*mathSpan).Raw))
	}
	return ast.WalkSkipChildren, nil
}
