// ABOUTME: Catalog commands for listing, looking up, and adding items.
// ABOUTME: Operate on the configured catalog or the file given with --file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/riegojerey/ExoidTrackr/internal/catalog"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"github.com/riegojerey/ExoidTrackr/internal/ui"
	"github.com/spf13/cobra"
)

func newCatalogCommand(app *appContext) *cobra.Command {
	var file string

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and edit the item catalog",
	}
	catalogCmd.PersistentFlags().StringVarP(&file, "file", "f", "", "Catalog file (default: catalog from config)")

	path := func() (string, error) {
		if p := strings.TrimSpace(file); p != "" {
			return p, nil
		}
		if app.cfg.Catalog != "" {
			return app.cfg.Catalog, nil
		}
		return "", errors.New("no catalog file; pass --file or set catalog in the config")
	}

	catalogCmd.AddCommand(newCatalogListCommand(path))
	catalogCmd.AddCommand(newCatalogLookupCommand(path))
	catalogCmd.AddCommand(newCatalogAddCommand(app, path))
	return catalogCmd
}

func newCatalogListCommand(path func() (string, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := path()
			if err != nil {
				return err
			}
			c, err := catalog.Load(p)
			if err != nil {
				return err
			}

			entries := c.Entries()
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprint(out, ui.FormatCatalogTable(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newCatalogLookupCommand(path func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code>",
		Short: "Show the description for an item code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := path()
			if err != nil {
				return err
			}
			c, err := catalog.Load(p)
			if err != nil {
				return err
			}

			desc, ok := c.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", catalog.ErrNotFound, strings.TrimSpace(args[0]))
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatEntry(models.Normalize(args[0]), desc))
			return nil
		},
	}
}

func newCatalogAddCommand(app *appContext, path func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "add <code> <description>",
		Short: "Add an item to the catalog",
		Long:  `Append an item to the catalog and save it. The file is created if it does not exist.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := path()
			if err != nil {
				return err
			}

			var c *catalog.Catalog
			if _, statErr := os.Stat(p); errors.Is(statErr, os.ErrNotExist) {
				c = catalog.New(p)
			} else if c, err = catalog.Load(p); err != nil {
				return err
			}

			code := strings.TrimSpace(args[0])
			if existing, ok := c.Lookup(code); ok {
				return fmt.Errorf("item code %q already in the catalog as %q", code, existing)
			}
			if err := c.Append(code, strings.TrimSpace(args[1])); err != nil {
				return fmt.Errorf("failed to add item: %w", err)
			}

			app.logger.Info("catalog item added", "code", code, "path", p)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added %s to %s", code, p)))
			return nil
		},
	}
}
