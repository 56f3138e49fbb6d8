// ABOUTME: Root command and shared command state for trackr.
// ABOUTME: Loads configuration and the logger once before any subcommand runs.

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/riegojerey/ExoidTrackr/internal/config"
	"github.com/riegojerey/ExoidTrackr/internal/logging"
	"github.com/spf13/cobra"
)

// appContext carries flags and loaded state shared by subcommands.
type appContext struct {
	configFlag   string
	logLevelFlag string

	cfg    *config.Config
	logger *log.Logger
}

func (a *appContext) configPath() string {
	if p := strings.TrimSpace(a.configFlag); p != "" {
		return p
	}
	return config.Path()
}

func (a *appContext) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath())
	if err != nil {
		return err
	}
	if a.logLevelFlag != "" {
		cfg.Log.Level = a.logLevelFlag
	}

	logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func newRootCommand() *cobra.Command {
	app := &appContext{}

	rootCmd := &cobra.Command{
		Use:   "trackr",
		Short: "Inventory check-in and check-out against a spreadsheet catalog",
		Long: `trackr records items checked in and out by scanning or typing item codes.
Codes are matched against an .xlsx catalog with "Item Code" and "Description"
columns, and the session ledger can be exported back to a spreadsheet.
It can also build a new catalog with a Code128 barcode image per item.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			return app.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&app.logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newScanCommand(app))
	rootCmd.AddCommand(newBarcodesCommand(app))
	rootCmd.AddCommand(newCatalogCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newMCPCommand(app))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
