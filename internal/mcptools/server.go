package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"elo-welcoming/internal/reconcile"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewServer creates the MCP server with every workflow tool registered
func NewServer(rec *reconcile.Reconciler, notifier reconcile.Notifier) *server.MCPServer {
	s := server.NewMCPServer(
		"elo",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	intake := NewIntakeTool(rec)
	s.AddTool(intake.Definition(), intake.Handle)

	notify := NewNotifyTool(rec, notifier)
	s.AddTool(notify.Definition(), notify.Handle)

	replies := NewRepliesTool(rec)
	s.AddTool(replies.Definition(), replies.Handle)

	welcomers := NewLoadWelcomersTool(rec)
	s.AddTool(welcomers.Definition(), welcomers.Handle)

	pending := NewPendingReportTool(rec)
	s.AddTool(pending.Definition(), pending.Handle)

	return s
}

// ServeStdio serves s over standard input and output until EOF
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
