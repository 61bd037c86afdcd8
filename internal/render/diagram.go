package render

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DiagramErrorNotice is inserted after a diagram block that could not be rendered.
const DiagramErrorNotice = `<div class="diagram-error">Mermaid diagram failed to render.</div>`

var diagramKind = ast.NewNodeKind("Diagram")

// diagramBlock is a fenced block in a diagram language. It is kept out of
// syntax highlighting so it always renders as <pre><code class="language-X">.
type diagramBlock struct {
	ast.BaseBlock
	Lang   string
	Source []byte
}

func (n *diagramBlock) Kind() ast.NodeKind {
	return diagramKind
}

func (n *diagramBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Lang": n.Lang}, nil)
}

var diagramLanguages = map[string]bool{"mermaid": true}

type diagramExtension struct{}

func (e *diagramExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&diagramTransformer{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&diagramHTMLRenderer{}, 100),
	))
}

type diagramTransformer struct{}

func (t *diagramTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var blocks []*ast.FencedCodeBlock
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fence, ok := n.(*ast.FencedCodeBlock); ok {
			if diagramLanguages[strings.ToLower(string(fence.Language(source)))] {
				blocks = append(blocks, fence)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, fence := range blocks {
		var buf bytes.Buffer
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		block := &diagramBlock{
			Lang:   strings.ToLower(string(fence.Language(source))),
			Source: buf.Bytes(),
		}
		if parent := fence.Parent(); parent != nil {
			parent.ReplaceChild(parent, fence, block)
		}
	}
}

type diagramHTMLRenderer struct{}

func (r *diagramHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(diagramKind, r.renderDiagram)
}

func (r *diagramHTMLRenderer) renderDiagram(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*diagramBlock)
	_, _ = w.WriteString(`<pre><code class="language-`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.Lang)))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(n.Source))
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

// renderDiagrams renders every diagram code block under sel in place. A block
// that fails keeps its source and gets one error notice after it.
func (r *Renderer) renderDiagrams(ctx context.Context, sel *goquery.Selection) (rendered, failed int) {
	if r.diagrams == nil {
		return 0, 0
	}
	for lang := range diagramLanguages {
		sel.Find("pre > code.language-" + lang).Each(func(_ int, code *goquery.Selection) {
			pre := code.Parent()
			out, err := r.diagrams.Render(ctx, lang, code.Text())
			if err != nil {
				r.logger.Warn("diagram failed to render", "lang", lang, "error", err)
				pre.AfterHtml(DiagramErrorNotice)
				failed++
				return
			}
			pre.ReplaceWithHtml(out)
			rendered++
		})
	}
	return rendered, failed
}
