package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opennotesproject/notevault/internal/github"
	"github.com/opennotesproject/notevault/internal/search"
	"github.com/opennotesproject/notevault/internal/session"
	"github.com/opennotesproject/notevault/internal/vault"
)

const notReadyMessage = "The vault has not been loaded yet. Try again once indexing has finished."

// handleSearchNotes runs a substring search over the indexed notes.
func (s *Server) handleSearchNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	results, err := s.session.Search(query)
	if err != nil {
		if errors.Is(err, session.ErrNotReady) {
			return mcp.NewToolResultError(notReadyMessage), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No results for %q.", strings.TrimSpace(query))), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleReadNote returns the raw Markdown of a note.
func (s *Server) handleReadNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notePath, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	notePath = strings.Trim(notePath, "/")
	if !vault.IsNotePath(notePath) {
		return mcp.NewToolResultError(fmt.Sprintf("%q is not a Markdown note", notePath)), nil
	}

	content, err := s.session.Raw(ctx, notePath)
	if err != nil {
		var reqErr *github.RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == 404 {
			return mcp.NewToolResultError(fmt.Sprintf("No note found at %q.", notePath)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read note: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", session.TitleOf(notePath))
	fmt.Fprintf(&sb, "Topic: %s\nPath: %s\n\n", session.TopicOf(notePath), notePath)
	sb.Write(content)
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListTree prints the vault, or one folder of it, as an outline.
func (s *Server) handleListTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := s.session.Tree()
	if err != nil {
		return mcp.NewToolResultError(notReadyMessage), nil
	}

	folder := strings.Trim(request.GetString("folder", ""), "/")
	node := root
	if folder != "" {
		node = root.Folder(folder)
		if node == nil {
			return mcp.NewToolResultError(fmt.Sprintf("No folder named %q.", folder)), nil
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d note(s)\n", node.Count())
	writeOutline(&sb, node, 0)
	return mcp.NewToolResultText(sb.String()), nil
}

// writeOutline lists folders before notes, mirroring the sidebar.
func writeOutline(sb *strings.Builder, node *vault.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, name := range node.SortedFolders() {
		fmt.Fprintf(sb, "%s%s/\n", indent, name)
		writeOutline(sb, node.Folders[name], depth+1)
	}
	for _, n := range node.SortedNotes() {
		fmt.Fprintf(sb, "%s- %s (%s)\n", indent, n.Name, n.Path)
	}
}

// formatSearchResults renders results one per line, in index order.
func formatSearchResults(results []search.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, r.Title, r.Path)
	}
	return sb.String()
}
