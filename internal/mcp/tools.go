// ABOUTME: MCP tools for scanning, ledger edits, and spreadsheet exports.
// ABOUTME: Each tool drives the session and returns its notifications as JSON.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/riegojerey/ExoidTrackr/internal/export"
	"github.com/riegojerey/ExoidTrackr/internal/ledger"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"github.com/riegojerey/ExoidTrackr/internal/session"
)

type toolResponse struct {
	Notifications []session.Notification `json:"notifications"`
	Mode          string                 `json:"mode"`
	Ledger        []models.LedgerEntry   `json:"ledger,omitempty"`
	Summary       *ledger.Summary        `json:"summary,omitempty"`
	Item          *models.CatalogEntry   `json:"item,omitempty"`
	Report        *export.BatchReport    `json:"report,omitempty"`
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "load_catalog",
		Description: "Load the item catalog from an .xlsx file with Item Code and Description columns",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "Path to the catalog spreadsheet"}
			},
			"required": ["path"]
		}`),
	}, s.handleLoadCatalog)

	s.server.AddTool(&mcp.Tool{
		Name:        "scan_item",
		Description: "Process a scanned or typed item code in the current mode",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "Item code as scanned"},
				"description": {"type": "string", "description": "Description to add the code to the catalog with, if it is unknown and adding unknown codes is enabled"}
			},
			"required": ["code"]
		}`),
	}, s.handleScanItem)

	s.server.AddTool(&mcp.Tool{
		Name:        "set_mode",
		Description: "Set the scanning mode",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"mode": {"type": "string", "enum": ["check-in", "check-out"]}
			},
			"required": ["mode"]
		}`),
	}, s.handleSetMode)

	s.server.AddTool(&mcp.Tool{
		Name:        "toggle_mode",
		Description: "Switch between check-in and check-out mode",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleToggleMode)

	s.server.AddTool(&mcp.Tool{
		Name:        "adjust_quantity",
		Description: "Add to or subtract from an item's quantity; never goes below zero",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "Item code"},
				"delta": {"type": "integer", "description": "Amount to add, negative to subtract"}
			},
			"required": ["code", "delta"]
		}`),
	}, s.handleAdjustQuantity)

	s.server.AddTool(&mcp.Tool{
		Name:        "set_quantity",
		Description: "Set an item's quantity; invalid or negative values keep the current quantity",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "Item code"},
				"quantity": {"type": ["string", "integer"], "description": "New quantity"}
			},
			"required": ["code", "quantity"]
		}`),
	}, s.handleSetQuantity)

	s.server.AddTool(&mcp.Tool{
		Name:        "remove_item",
		Description: "Remove an item from the ledger",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "Item code"}
			},
			"required": ["code"]
		}`),
	}, s.handleRemoveItem)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_ledger",
		Description: "List ledger rows in first-seen order with totals",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListLedger)

	s.server.AddTool(&mcp.Tool{
		Name:        "lookup_item",
		Description: "Look up an item code in the loaded catalog",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "Item code"}
			},
			"required": ["code"]
		}`),
	}, s.handleLookupItem)

	s.server.AddTool(&mcp.Tool{
		Name:        "add_catalog_item",
		Description: "Append an item to the loaded catalog and save it",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "Item code"},
				"description": {"type": "string", "description": "Item description"}
			},
			"required": ["code", "description"]
		}`),
	}, s.handleAddCatalogItem)

	s.server.AddTool(&mcp.Tool{
		Name:        "export_ledger",
		Description: "Write the ledger to an .xlsx file",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "Destination file; defaults to the export directory"}
			}
		}`),
	}, s.handleExportLedger)

	s.server.AddTool(&mcp.Tool{
		Name:        "generate_barcodes",
		Description: "Write a new catalog with a Code128 barcode image for each row",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"rows": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"code": {"type": "string"},
							"description": {"type": "string"}
						},
						"required": ["code"]
					}
				},
				"dir": {"type": "string", "description": "Destination directory; defaults to the export directory"},
				"name": {"type": "string", "description": "File name", "default": "database_with_barcodes.xlsx"}
			},
			"required": ["rows"]
		}`),
	}, s.handleGenerateBarcodes)
}

// respond drains notifications into a JSON result. Errors from the session
// mark the result as failed; the notifications carry the details.
func (s *Server) respond(err error, resp toolResponse) (*mcp.CallToolResult, error) {
	resp.Notifications = s.view.drain()
	if resp.Notifications == nil {
		resp.Notifications = []session.Notification{}
	}
	resp.Mode = s.session.Mode().String()

	data, mErr := json.MarshalIndent(resp, "", "  ")
	if mErr != nil {
		return nil, mErr
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
		IsError: err != nil,
	}, nil
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func (s *Server) resolve(path, fallback string) string {
	if strings.TrimSpace(path) == "" {
		path = fallback
	}
	if path == "" || filepath.IsAbs(path) || s.exportDir == "" {
		return path
	}
	return filepath.Join(s.exportDir, path)
}

func (s *Server) handleLoadCatalog(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.session.SelectFile(params.Path)
	return s.respond(err, toolResponse{})
}

func (s *Server) handleScanItem(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Code) == "" {
		return errorResult("item code cannot be empty"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetPrompter(session.PromptFunc(func(string) (string, bool) {
		return params.Description, params.Description != ""
	}))
	defer s.session.SetPrompter(nil)

	err := s.session.SubmitCode(params.Code)
	return s.respond(err, toolResponse{Ledger: s.session.Rows()})
}

func (s *Server) handleSetMode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}
	mode, err := models.ParseMode(params.Mode)
	if err != nil {
		return errorResult("%v", err), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetMode(mode)
	return s.respond(nil, toolResponse{})
}

func (s *Server) handleToggleMode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.ToggleMode()
	return s.respond(nil, toolResponse{})
}

func (s *Server) handleAdjustQuantity(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Code  string `json:"code"`
		Delta int    `json:"delta"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.session.AdjustQuantity(params.Code, params.Delta)
	return s.respond(err, toolResponse{Ledger: s.session.Rows()})
}

func (s *Server) handleSetQuantity(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Code     string          `json:"code"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	// Accept both "5" and 5; anything else reaches the ledger as typed text.
	text := string(params.Quantity)
	var quoted string
	if err := json.Unmarshal(params.Quantity, &quoted); err == nil {
		text = quoted
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.session.EditQuantity(params.Code, text)
	return s.respond(err, toolResponse{Ledger: s.session.Rows()})
}

func (s *Server) handleRemoveItem(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.session.RemoveItem(params.Code)
	return s.respond(err, toolResponse{Ledger: s.session.Rows()})
}

func (s *Server) handleListLedger(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := s.session.Summary()
	return s.respond(nil, toolResponse{Ledger: s.session.Rows(), Summary: &sum})
}

func (s *Server) handleLookupItem(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Catalog() == nil {
		return errorResult("no catalog loaded"), nil
	}
	desc, ok := s.session.LookupItem(params.Code)
	if !ok {
		return errorResult("item code %q not found in the catalog", strings.TrimSpace(params.Code)), nil
	}
	return s.respond(nil, toolResponse{Item: &models.CatalogEntry{ItemCode: models.Normalize(params.Code), Description: desc}})
}

func (s *Server) handleAddCatalogItem(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.session.AddToCatalog(strings.TrimSpace(params.Code), strings.TrimSpace(params.Description))
	return s.respond(err, toolResponse{})
}

func (s *Server) handleExportLedger(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.session.Export(s.resolve(params.Path, export.DefaultLedgerFile))
	return s.respond(err, toolResponse{})
}

func (s *Server) handleGenerateBarcodes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Rows []export.CatalogRow `json:"rows"`
		Dir  string              `json:"dir"`
		Name string              `json:"name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}
	dir := params.Dir
	if strings.TrimSpace(dir) == "" {
		dir = s.exportDir
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.ClearDraft()
	for _, r := range params.Rows {
		s.session.AddCatalogRow(r.Code, r.Description)
	}
	report, err := s.session.SaveCatalog(dir, params.Name)
	if err != nil {
		return s.respond(err, toolResponse{})
	}
	s.session.ClearDraft()
	return s.respond(nil, toolResponse{Report: &report})
}
