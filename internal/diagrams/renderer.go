// Package diagrams turns diagram source found in notes into displayable markup.
package diagrams

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyDiagram is returned for a diagram block with no source.
var ErrEmptyDiagram = errors.New("empty diagram")

// Renderer produces HTML for one diagram. lang is the fence language, e.g. "mermaid".
type Renderer interface {
	Render(ctx context.Context, lang, source string) (string, error)
}

// Mode selects how diagrams are rendered.
type Mode string

const (
	ModeClient Mode = "client"
	ModeKroki  Mode = "kroki"
	ModeOff    Mode = "off"
)

// New returns the renderer for mode, or nil when diagrams are left as code blocks.
func New(mode Mode, krokiURL string, client *http.Client) Renderer {
	switch mode {
	case ModeKroki:
		return NewKrokiRenderer(krokiURL, client)
	case ModeOff:
		return nil
	default:
		return ClientRenderer{}
	}
}

// ClientRenderer hands diagrams to mermaid.js in the browser. Mermaid source
// that fails ValidateMermaid is rejected here so the page shows the failure
// notice without depending on the browser.
type ClientRenderer struct{}

func (ClientRenderer) Render(_ context.Context, lang, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", ErrEmptyDiagram
	}
	if lang == "mermaid" {
		if err := ValidateMermaid(source); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf(`<div class="%s">%s</div>`, html.EscapeString(lang), html.EscapeString(source)), nil
}

// KrokiRenderer renders diagrams to SVG on a Kroki-compatible server.
type KrokiRenderer struct {
	baseURL string
	client  *http.Client
}

// NewKrokiRenderer creates a renderer posting to baseURL. A nil client uses a
// client with a 15s timeout.
func NewKrokiRenderer(baseURL string, client *http.Client) *KrokiRenderer {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &KrokiRenderer{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (k *KrokiRenderer) Render(ctx context.Context, lang, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", ErrEmptyDiagram
	}

	endpoint := fmt.Sprintf("%s/%s/svg", k.baseURL, lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("creating kroki request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "image/svg+xml")

	resp, err := k.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("kroki request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading kroki response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("kroki returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	svg := string(body)
	start := strings.Index(svg, "<svg")
	if start < 0 {
		return "", errors.New("kroki response is not an SVG document")
	}
	return `<div class="diagram">` + svg[start:] + `</div>`, nil
}
