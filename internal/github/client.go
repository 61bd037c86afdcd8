// Package github reads directory listings and raw note content from a GitHub
// repository through the public REST contents API and raw.githubusercontent.com.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrListing marks a failed directory listing.
	ErrListing = errors.New("listing failed")
	// ErrFetch marks a failed raw content retrieval.
	ErrFetch = errors.New("fetch failed")
)

// EntryType is the kind of a repository entry as reported by the contents API.
type EntryType string

const (
	TypeDir  EntryType = "dir"
	TypeFile EntryType = "file"
)

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name string    `json:"name"`
	Path string    `json:"path"` // relative to the configured root
	Type EntryType `json:"type"`
}

// Config identifies the repository, branch and notes root to read from.
type Config struct {
	Owner      string
	Repo       string
	Branch     string
	RootPath   string
	APIBaseURL string
	RawBaseURL string
}

// RequestError describes a failed listing or fetch. It matches ErrListing or
// ErrFetch with errors.Is, as well as the underlying transport error if any.
type RequestError struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%v: %s: status %d", e.Kind, e.URL, e.StatusCode)
	}
}

func (e *RequestError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Client talks to the GitHub contents API and the raw content host.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client. A nil httpClient uses a client with a 30s timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.RawBaseURL = strings.TrimRight(cfg.RawBaseURL, "/")
	cfg.RootPath = strings.Trim(cfg.RootPath, "/")
	return &Client{cfg: cfg, httpClient: httpClient}
}

// fullPath joins the configured root prefix with a root-relative path.
func (c *Client) fullPath(p string) string {
	p = strings.Trim(p, "/")
	switch {
	case c.cfg.RootPath == "":
		return p
	case p == "":
		return c.cfg.RootPath
	default:
		return c.cfg.RootPath + "/" + p
	}
}

// EscapePath URL-escapes every segment of p while keeping the separators.
func EscapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// ContentsURL returns the contents API location listing path on the configured branch.
// An empty path lists the configured root.
func (c *Client) ContentsURL(path string) string {
	u := fmt.Sprintf("%s/repos/%s/%s/contents", c.cfg.APIBaseURL, url.PathEscape(c.cfg.Owner), url.PathEscape(c.cfg.Repo))
	if full := c.fullPath(path); full != "" {
		u += "/" + EscapePath(full)
	}
	return u + "?ref=" + url.QueryEscape(c.cfg.Branch)
}

// RawURL returns the location of the raw bytes of the document at path.
func (c *Client) RawURL(path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		c.cfg.RawBaseURL,
		url.PathEscape(c.cfg.Owner),
		url.PathEscape(c.cfg.Repo),
		EscapePath(c.cfg.Branch),
		EscapePath(c.fullPath(path)),
	)
}

// contentItem is one element of the contents API directory response.
type contentItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// List returns the immediate entries of the directory at path.
func (c *Client) List(ctx context.Context, path string) ([]Entry, error) {
	endpoint := c.ContentsURL(path)
	body, err := c.get(ctx, endpoint, "application/vnd.github+json", ErrListing)
	if err != nil {
		return nil, err
	}

	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &RequestError{Kind: ErrListing, URL: endpoint, Err: fmt.Errorf("decoding listing: %w", err)}
	}

	prefix := strings.Trim(path, "/")
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		rel := it.Name
		if prefix != "" {
			rel = prefix + "/" + it.Name
		}
		entries = append(entries, Entry{Name: it.Name, Path: rel, Type: EntryType(it.Type)})
	}
	return entries, nil
}

// Fetch returns the raw content of the document at path.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, c.RawURL(path), "", ErrFetch)
}

func (c *Client) get(ctx context.Context, endpoint, accept string, kind error) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RequestError{Kind: kind, URL: endpoint, Err: err}
	}
	req.Header.Set("User-Agent", "notevault")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Kind: kind, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &RequestError{Kind: kind, URL: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Kind: kind, URL: endpoint, Err: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}
