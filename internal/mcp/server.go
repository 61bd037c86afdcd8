package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/opennotesproject/notevault/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the vault to AI agents.
type Server struct {
	session *session.Session
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server backed by sess. The session should be
// initialized before tools are called.
func NewServer(sess *session.Session) *Server {
	s := &Server{session: sess}

	s.mcp = server.NewMCPServer(
		"notevault",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchNotesTool, s.handleSearchNotes)
	s.mcp.AddTool(readNoteTool, s.handleReadNote)
	s.mcp.AddTool(listTreeTool, s.handleListTree)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
