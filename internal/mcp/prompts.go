// ABOUTME: MCP prompts for inventory workflows.
// ABOUTME: Guides an agent through reconciling a count against the catalog.

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "reconcile-inventory",
		Description: "Check a list of counted item codes against the catalog and record them",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "catalog",
				Description: "Path to the catalog spreadsheet",
				Required:    false,
			},
			{
				Name:        "mode",
				Description: "check-in or check-out",
				Required:    false,
			},
		},
	}, s.getReconcilePrompt)
}

func (s *Server) getReconcilePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	catalog := req.Params.Arguments["catalog"]
	load := "1. The catalog is already loaded; skip to step 2."
	if catalog != "" {
		load = fmt.Sprintf("1. Use the load_catalog tool with path %q", catalog)
	}
	mode := req.Params.Arguments["mode"]
	if mode == "" {
		mode = "check-in"
	}

	template := fmt.Sprintf(`Reconcile the items I counted against the inventory catalog.

%s
2. Use the set_mode tool to switch to %s mode
3. For each code I give you, use the scan_item tool
   - If a code is not in the catalog, tell me and ask for a description
     before adding it with add_catalog_item
   - Scanning the same code again while checking in increases its quantity
4. Use the list_ledger tool and summarize:
   - Items checked in and checked out
   - Total units on hand
   - Codes that were rejected
5. Ask me where to save, then use the export_ledger tool`, load, mode)

	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: template,
				},
			},
		},
	}, nil
}
