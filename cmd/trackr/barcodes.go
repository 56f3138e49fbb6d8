// ABOUTME: Barcodes command for building a catalog with Code128 images.
// ABOUTME: Rows come from --item flags, a YAML file, or an existing .xlsx catalog.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/riegojerey/ExoidTrackr/internal/catalog"
	"github.com/riegojerey/ExoidTrackr/internal/export"
	"github.com/riegojerey/ExoidTrackr/internal/session"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newBarcodesCommand(app *appContext) *cobra.Command {
	var items []string
	var fromPath string
	var dir string
	var name string

	cmd := &cobra.Command{
		Use:   "barcodes",
		Short: "Write a catalog with a barcode image for each item",
		Long: `Write an .xlsx catalog with Item Code, Description, and a Code128 barcode
image per row. Rows with a blank code are skipped.

Rows can be given as --item CODE=DESCRIPTION (repeatable), read from a YAML list
of {code, description} with --from rows.yaml, or copied from an existing catalog
with --from catalog.xlsx.`,
		Example: `  trackr barcodes --item TL-001="Torque wrench" --item TL-002="Multimeter"
  trackr barcodes --from tools.yaml --dir ./labels
  trackr barcodes --from catalog.xlsx --name catalog_with_barcodes.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := parseItemFlags(items)
			if err != nil {
				return err
			}
			if fromPath != "" {
				more, err := readRows(fromPath)
				if err != nil {
					return err
				}
				rows = append(rows, more...)
			}
			if len(rows) == 0 {
				return errors.New("no rows given; use --item or --from")
			}

			if dir == "" {
				dir = app.cfg.ExportDir
			}
			if dir == "" {
				dir = "."
			}

			s := session.New(&terminalView{out: cmd.OutOrStdout()}, session.Options{
				Export: app.cfg.ExportOptions(),
				Logger: app.logger,
			})
			for _, r := range rows {
				s.AddCatalogRow(r.Code, r.Description)
			}
			_, err = s.SaveCatalog(dir, name)
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "Row as CODE=DESCRIPTION (repeatable)")
	cmd.Flags().StringVarP(&fromPath, "from", "f", "", "Read rows from a .yaml or .xlsx file")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Destination directory (default: export_dir or the current directory)")
	cmd.Flags().StringVarP(&name, "name", "n", export.DefaultCatalogFile, "Destination file name")
	return cmd
}

func parseItemFlags(items []string) ([]export.CatalogRow, error) {
	rows := make([]export.CatalogRow, 0, len(items))
	for _, item := range items {
		code, desc, found := strings.Cut(item, "=")
		if !found {
			return nil, fmt.Errorf("invalid --item %q: expected CODE=DESCRIPTION", item)
		}
		rows = append(rows, export.CatalogRow{Code: code, Description: desc})
	}
	return rows, nil
}

func readRows(path string) ([]export.CatalogRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		c, err := catalog.Load(path)
		if err != nil {
			return nil, err
		}
		entries := c.Entries()
		rows := make([]export.CatalogRow, len(entries))
		for i, e := range entries {
			rows[i] = export.CatalogRow{Code: e.ItemCode, Description: e.Description}
		}
		return rows, nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
		if err != nil {
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
		var rows []export.CatalogRow
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported row file %s: use .yaml or .xlsx", path)
	}
}
