// ABOUTME: Tests for the MCP tool, resource, and prompt handlers.
// ABOUTME: Calls handlers directly against a session backed by temp files.

package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/riegojerey/ExoidTrackr/internal/catalog"
	"github.com/riegojerey/ExoidTrackr/internal/export"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"github.com/riegojerey/ExoidTrackr/internal/session"
)

type handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, h handler, args string) (toolResponse, bool) {
	t.Helper()
	res, err := h(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(args)},
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	text := res.Content[0].(*mcp.TextContent).Text
	var resp toolResponse
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return toolResponse{Notifications: []session.Notification{{Message: text, Severity: session.Error}}}, res.IsError
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("bad tool response %q: %v", text, err)
	}
	return resp, res.IsError
}

func newTestServer(t *testing.T, opts session.Options) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.xlsx")
	c := catalog.New(path)
	if err := c.Append("abc123", "Widget"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	opts.Export = export.DefaultOptions()
	return NewServer(opts, path, dir), dir
}

func TestScanAndExport(t *testing.T) {
	s, dir := newTestServer(t, session.Options{})

	resp, isErr := call(t, s.handleScanItem, `{"code": "ABC123 "}`)
	if isErr {
		t.Fatalf("scan failed: %+v", resp.Notifications)
	}
	if len(resp.Ledger) != 1 || resp.Ledger[0].Quantity != 1 {
		t.Fatalf("unexpected ledger %+v", resp.Ledger)
	}
	call(t, s.handleScanItem, `{"code": "abc123"}`)

	resp, _ = call(t, s.handleToggleMode, `{}`)
	if resp.Mode != models.CheckOut.String() {
		t.Errorf("expected check-out mode, got %q", resp.Mode)
	}
	resp, _ = call(t, s.handleScanItem, `{"code": "abc123"}`)
	if got := resp.Ledger[0]; got.Status != models.CheckedOut || got.Quantity != 2 {
		t.Errorf("unexpected entry %+v", got)
	}

	_, isErr = call(t, s.handleExportLedger, `{}`)
	if isErr {
		t.Fatal("export failed")
	}
	if _, err := os.Stat(filepath.Join(dir, export.DefaultLedgerFile)); err != nil {
		t.Errorf("expected export in export dir: %v", err)
	}
}

func TestScanUnknownCode(t *testing.T) {
	s, _ := newTestServer(t, session.Options{})
	resp, isErr := call(t, s.handleScanItem, `{"code": "zzz", "description": "Thing"}`)
	if !isErr {
		t.Error("expected error result when unknown codes are rejected")
	}
	if n := len(resp.Notifications); n == 0 || resp.Notifications[n-1].Severity != session.Error {
		t.Errorf("expected error notification, got %+v", resp.Notifications)
	}

	lenient, _ := newTestServer(t, session.Options{PromptUnknown: true})
	resp, isErr = call(t, lenient.handleScanItem, `{"code": "zzz", "description": "Thing"}`)
	if isErr {
		t.Fatalf("expected unknown code to be added: %+v", resp.Notifications)
	}
	if len(resp.Ledger) != 1 || resp.Ledger[0].Description != "Thing" {
		t.Errorf("unexpected ledger %+v", resp.Ledger)
	}

	resp, _ = call(t, lenient.handleScanItem, `{"code": "yyy"}`)
	if len(resp.Ledger) != 1 {
		t.Error("expected no change without a description")
	}
}

func TestSetQuantity(t *testing.T) {
	s, _ := newTestServer(t, session.Options{})
	call(t, s.handleScanItem, `{"code": "abc123"}`)

	resp, isErr := call(t, s.handleSetQuantity, `{"code": "abc123", "quantity": 7}`)
	if isErr || resp.Ledger[0].Quantity != 7 {
		t.Errorf("expected quantity 7, got %+v", resp.Ledger)
	}
	resp, isErr = call(t, s.handleSetQuantity, `{"code": "abc123", "quantity": "4"}`)
	if isErr || resp.Ledger[0].Quantity != 4 {
		t.Errorf("expected quantity 4, got %+v", resp.Ledger)
	}
	resp, isErr = call(t, s.handleSetQuantity, `{"code": "abc123", "quantity": -2}`)
	if !isErr || resp.Ledger[0].Quantity != 4 {
		t.Errorf("expected negative quantity rejected and 4 kept, got %+v", resp.Ledger)
	}

	resp, _ = call(t, s.handleAdjustQuantity, `{"code": "abc123", "delta": -10}`)
	if resp.Ledger[0].Quantity != 0 {
		t.Errorf("expected clamp at 0, got %d", resp.Ledger[0].Quantity)
	}

	resp, _ = call(t, s.handleRemoveItem, `{"code": "ABC123"}`)
	if len(resp.Ledger) != 0 {
		t.Errorf("expected empty ledger, got %+v", resp.Ledger)
	}
}

func TestSetMode(t *testing.T) {
	s, _ := newTestServer(t, session.Options{})
	resp, isErr := call(t, s.handleSetMode, `{"mode": "check-out"}`)
	if isErr || resp.Mode != models.CheckOut.String() {
		t.Errorf("unexpected response %+v", resp)
	}
	if _, isErr := call(t, s.handleSetMode, `{"mode": "sideways"}`); !isErr {
		t.Error("expected error for unknown mode")
	}
}

func TestLookupAndAddCatalogItem(t *testing.T) {
	s, _ := newTestServer(t, session.Options{})

	resp, isErr := call(t, s.handleLookupItem, `{"code": "ABC123"}`)
	if isErr || resp.Item == nil || resp.Item.Description != "Widget" {
		t.Errorf("unexpected lookup %+v", resp)
	}
	if _, isErr := call(t, s.handleLookupItem, `{"code": "nope"}`); !isErr {
		t.Error("expected miss to be an error")
	}

	if _, isErr := call(t, s.handleAddCatalogItem, `{"code": "new-1", "description": "Sprocket"}`); isErr {
		t.Fatal("add_catalog_item failed")
	}
	resp, _ = call(t, s.handleLookupItem, `{"code": "NEW-1"}`)
	if resp.Item == nil || resp.Item.Description != "Sprocket" {
		t.Errorf("expected new item, got %+v", resp.Item)
	}
}

func TestGenerateBarcodes(t *testing.T) {
	s, dir := newTestServer(t, session.Options{})

	resp, isErr := call(t, s.handleGenerateBarcodes, `{"rows": [
		{"code": "X1", "description": "A"},
		{"code": "", "description": "B"},
		{"code": "X2", "description": "C"}
	]}`)
	if isErr {
		t.Fatalf("generate failed: %+v", resp.Notifications)
	}
	if resp.Report == nil || resp.Report.Written != 2 {
		t.Errorf("unexpected report %+v", resp.Report)
	}
	if _, err := os.Stat(filepath.Join(dir, export.DefaultCatalogFile)); err != nil {
		t.Errorf("expected catalog file: %v", err)
	}

	resp, _ = call(t, s.handleGenerateBarcodes, `{"rows": [{"code": "Y1"}], "name": "second.xlsx"}`)
	if resp.Report == nil || resp.Report.Written != 1 {
		t.Errorf("expected draft cleared between calls, got %+v", resp.Report)
	}
}

func TestReadLedgerResource(t *testing.T) {
	s, _ := newTestServer(t, session.Options{})
	call(t, s.handleScanItem, `{"code": "abc123"}`)

	res, err := s.handleReadLedger(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: ledgerURI},
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc ledgerDocument
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &doc); err != nil {
		t.Fatalf("bad document: %v", err)
	}
	if len(doc.Rows) != 1 || doc.Summary.Units != 1 || doc.Catalog == "" {
		t.Errorf("unexpected document %+v", doc)
	}

	if _, err := s.handleReadLedger(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "trackr://other"},
	}); err == nil {
		t.Error("expected error for unknown URI")
	}
}

func TestReconcilePrompt(t *testing.T) {
	s, _ := newTestServer(t, session.Options{})
	res, err := s.getReconcilePrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{"catalog": "/tmp/c.xlsx", "mode": "check-out"}},
	})
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(text, "/tmp/c.xlsx") || !strings.Contains(text, "check-out mode") {
		t.Errorf("unexpected prompt %q", text)
	}
}

func TestStartupCatalogFailureReported(t *testing.T) {
	dir := t.TempDir()
	s := NewServer(session.Options{}, filepath.Join(dir, "missing.xlsx"), dir)

	resp, _ := call(t, s.handleScanItem, `{"code": "abc123"}`)
	var sawLoadFailure bool
	for _, n := range resp.Notifications {
		if strings.Contains(n.Message, "Failed to load catalog") {
			sawLoadFailure = true
		}
	}
	if !sawLoadFailure {
		t.Errorf("expected startup load failure in first result, got %+v", resp.Notifications)
	}

	resp, _ = call(t, s.handleListLedger, `{}`)
	if len(resp.Notifications) != 0 {
		t.Errorf("expected startup notification reported once, got %+v", resp.Notifications)
	}
}
