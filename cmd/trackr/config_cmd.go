// ABOUTME: Config commands for showing, creating, and locating the config file.
// ABOUTME: init writes the defaults so they can be edited.

package main

import (
	"fmt"

	"github.com/riegojerey/ExoidTrackr/internal/config"
	"github.com/riegojerey/ExoidTrackr/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(app *appContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(app))
	configCmd.AddCommand(newConfigInitCommand(app))
	configCmd.AddCommand(newConfigPathCommand(app))
	return configCmd
}

func newConfigShowCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(app.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !config.Exists(app.configPath()) {
				fmt.Fprintf(out, "# %s does not exist; showing defaults\n", app.configPath())
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newConfigInitCommand(app *appContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := app.configPath()
			if config.Exists(target) && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			}
			if err := config.Save(target, config.Default()); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wrote default configuration to %s", target)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing configuration")
	return cmd
}

func newConfigPathCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file path",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), app.configPath())
			return nil
		},
	}
}
