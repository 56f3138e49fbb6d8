// ABOUTME: MCP command to start the MCP server.
// ABOUTME: Runs on stdio for integration with AI agents.

package main

import (
	"github.com/riegojerey/ExoidTrackr/internal/mcp"
	"github.com/riegojerey/ExoidTrackr/internal/session"
	"github.com/spf13/cobra"
)

func newMCPCommand(app *appContext) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  `Start the Model Context Protocol server for AI agent integration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if catalogPath == "" {
				catalogPath = cfg.Catalog
			}
			server := mcp.NewServer(session.Options{
				Mode:          cfg.StartMode(),
				PromptUnknown: cfg.PromptUnknown(),
				Export:        cfg.ExportOptions(),
				Logger:        app.logger,
			}, catalogPath, cfg.ExportDir)

			app.logger.Info("mcp server starting", "catalog", catalogPath)
			return server.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog to load at startup (default: catalog from config)")
	return cmd
}
