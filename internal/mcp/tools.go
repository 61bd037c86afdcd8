package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchNotesTool defines the search_notes MCP tool.
var searchNotesTool = mcp.NewTool("search_notes",
	mcp.WithDescription("Search the vault for notes whose title or content contains the query (case-insensitive)."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to look for"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default and cap 50)"),
	),
)

// readNoteTool defines the read_note MCP tool.
var readNoteTool = mcp.NewTool("read_note",
	mcp.WithDescription("Read the Markdown source of a note."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path of the note relative to the vault root, e.g. Physics/Mechanics/Newton.md"),
	),
)

// listTreeTool defines the list_tree MCP tool.
var listTreeTool = mcp.NewTool("list_tree",
	mcp.WithDescription("List the folders and notes of the vault as an indented outline."),
	mcp.WithString("folder",
		mcp.Description("Only list this folder (default: whole vault)"),
	),
)
