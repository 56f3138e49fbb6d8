// ABOUTME: MCP server for trackr integration with AI agents.
// ABOUTME: Exposes one scanning session through tools, a ledger resource, and prompts.

package mcp

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"github.com/riegojerey/ExoidTrackr/internal/session"
)

// collector is the session View for MCP calls. Notifications are drained
// into each tool result.
type collector struct {
	notes []session.Notification
	rows  []models.LedgerEntry
}

func (c *collector) Notify(n session.Notification) { c.notes = append(c.notes, n) }

func (c *collector) Refresh(rows []models.LedgerEntry) { c.rows = rows }

func (c *collector) drain() []session.Notification {
	out := c.notes
	c.notes = nil
	return out
}

type Server struct {
	server *mcp.Server

	// mu serializes tool calls; the session is single-threaded.
	mu      sync.Mutex
	view    *collector
	session *session.Session
	// exportDir resolves relative export and barcode paths.
	exportDir string
}

// NewServer builds a server around a fresh session. If catalogPath is set
// the catalog is loaded up front; the outcome is reported with the first
// tool result.
func NewServer(opts session.Options, catalogPath, exportDir string) *Server {
	view := &collector{}
	s := &Server{
		view:      view,
		session:   session.New(view, opts),
		exportDir: exportDir,
	}
	if catalogPath != "" {
		if err := s.session.SelectFile(catalogPath); err != nil && opts.Logger != nil {
			opts.Logger.Warn("startup catalog not loaded", "path", catalogPath, "err", err)
		}
	}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "trackr",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			HasTools:     true,
			HasResources: true,
			HasPrompts:   true,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) Serve(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
