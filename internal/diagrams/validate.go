package diagrams

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDiagram is returned for mermaid source that cannot render.
var ErrInvalidDiagram = errors.New("invalid diagram")

// mermaidTypes are the diagram keywords mermaid accepts on the header line.
var mermaidTypes = []string{
	"graph", "flowchart", "sequenceDiagram", "classDiagram", "classDiagram-v2",
	"stateDiagram", "stateDiagram-v2", "erDiagram", "journey", "gantt", "pie",
	"quadrantChart", "requirementDiagram", "gitGraph", "mindmap", "timeline",
	"sankey-beta", "xychart-beta", "block-beta", "packet-beta", "kanban",
	"architecture-beta", "radar-beta", "zenuml",
	"C4Context", "C4Container", "C4Component", "C4Dynamic", "C4Deployment",
}

var closers = map[rune]rune{')': '(', ']': '[', '}': '{'}

// ValidateMermaid catches mermaid source the browser is certain to reject: a
// missing or unknown diagram type and, for flowcharts, unbalanced node shapes
// or subgraphs. It does not parse the full grammar.
func ValidateMermaid(source string) error {
	lines := strings.Split(source, "\n")
	i := skipPreamble(lines)
	if i == len(lines) {
		return fmt.Errorf("%w: no diagram type", ErrInvalidDiagram)
	}

	header := strings.TrimSpace(lines[i])
	kind := header
	if j := strings.IndexAny(header, " \t;"); j >= 0 {
		kind = header[:j]
	}
	if !knownType(kind) {
		return fmt.Errorf("%w: unknown diagram type %q", ErrInvalidDiagram, kind)
	}
	if kind != "graph" && kind != "flowchart" {
		return nil
	}
	return checkFlowchart(lines[i:])
}

// skipPreamble returns the index of the header line, past blank lines,
// %% comments and directives, and a --- front matter block.
func skipPreamble(lines []string) int {
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "" || strings.HasPrefix(line, "%%"):
			i++
		case line == "---":
			i++
			for i < len(lines) && strings.TrimSpace(lines[i]) != "---" {
				i++
			}
			i++
		default:
			return i
		}
	}
	return len(lines)
}

func knownType(kind string) bool {
	for _, t := range mermaidTypes {
		if kind == t {
			return true
		}
	}
	return false
}

func checkFlowchart(lines []string) error {
	var stack []rune
	subgraphs := 0
	for n, raw := range lines {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "%%") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "subgraph ") || line == "subgraph":
			subgraphs++
		case line == "end":
			if subgraphs == 0 {
				return fmt.Errorf("%w: line %d: end without subgraph", ErrInvalidDiagram, n+1)
			}
			subgraphs--
		}

		quoted := false
		for _, r := range line {
			switch {
			case r == '"':
				quoted = !quoted
			case quoted:
			case r == '(' || r == '[' || r == '{':
				stack = append(stack, r)
			case closers[r] != 0:
				if len(stack) == 0 || stack[len(stack)-1] != closers[r] {
					return fmt.Errorf("%w: line %d: unexpected %q", ErrInvalidDiagram, n+1, r)
				}
				stack = stack[:len(stack)-1]
			}
		}
		if quoted {
			return fmt.Errorf("%w: line %d: unterminated string", ErrInvalidDiagram, n+1)
		}
		// Node shapes never span lines.
		if len(stack) > 0 {
			return fmt.Errorf("%w: line %d: unclosed %q", ErrInvalidDiagram, n+1, stack[len(stack)-1])
		}
	}
	if subgraphs > 0 {
		return fmt.Errorf("%w: subgraph without end", ErrInvalidDiagram)
	}
	return nil
}
