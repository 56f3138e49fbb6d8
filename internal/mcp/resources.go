// ABOUTME: MCP resources exposing the live ledger.
// ABOUTME: trackr://ledger returns the rows, mode, and totals as JSON.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/riegojerey/ExoidTrackr/internal/ledger"
	"github.com/riegojerey/ExoidTrackr/internal/models"
)

const ledgerURI = "trackr://ledger"

func (s *Server) registerResources() {
	s.server.AddResource(
		&mcp.Resource{
			URI:         ledgerURI,
			Name:        "Ledger",
			Description: "Items checked in or out during this session",
			MIMEType:    "application/json",
		},
		s.handleReadLedger,
	)
}

type ledgerDocument struct {
	Mode    string               `json:"mode"`
	Catalog string               `json:"catalog,omitempty"`
	Summary ledger.Summary       `json:"summary"`
	Rows    []models.LedgerEntry `json:"rows"`
}

func (s *Server) handleReadLedger(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != ledgerURI {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	s.mu.Lock()
	doc := ledgerDocument{
		Mode:    s.session.Mode().String(),
		Summary: s.session.Summary(),
		Rows:    s.session.Rows(),
	}
	if c := s.session.Catalog(); c != nil {
		doc.Catalog = c.Path
	}
	s.mu.Unlock()

	if doc.Rows == nil {
		doc.Rows = []models.LedgerEntry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
