// ABOUTME: Spreadsheet export of ledger rows and of catalogs with barcode images.
// ABOUTME: Writes whole workbooks atomically; per-row barcode failures are batched.

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/riegojerey/ExoidTrackr/internal/barcode"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"github.com/riegojerey/ExoidTrackr/internal/workbook"
	"github.com/xuri/excelize/v2"
)

// Default file names used when only a directory is known.
const (
	DefaultCatalogFile = "database_with_barcodes.xlsx"
	DefaultLedgerFile  = "inventory_ledger.xlsx"
)

const (
	sheet = "Sheet1"

	// Placeholder shown in empty item code inputs; never a real code.
	codePlaceholder = "Item Code"

	pointsPerPixel = 0.75
	imagePadding   = 8
	maxRowHeight   = 409
)

var (
	LedgerHeader  = []string{"Item Code", "Description", "Status", "Quantity"}
	CatalogHeader = []string{"Item Code", "Description", "Barcode"}

	ErrNoDestination = errors.New("no destination selected")
)

// ExportError reports a workbook that was not written. The destination is
// left untouched.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export: %v", e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Options controls workbook layout.
type Options struct {
	Barcode barcode.Options
	// RowHeight is the minimum height in points of rows carrying a barcode.
	RowHeight float64
	// ColumnWidth is the width of the Barcode column in characters.
	ColumnWidth float64
	// Identifier is stored in the workbook properties, usually the session ID.
	Identifier string
}

func DefaultOptions() Options {
	return Options{
		Barcode:     barcode.DefaultOptions(),
		RowHeight:   90,
		ColumnWidth: 45,
	}
}

// Ledger writes the ledger header followed by one row per entry, in order.
func Ledger(path string, rows []models.LedgerEntry, opts Options) error {
	if strings.TrimSpace(path) == "" {
		return &ExportError{Err: ErrNoDestination}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := setProperties(f, "Inventory ledger", opts.Identifier); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := workbook.SetRow(f, sheet, 1, workbook.Strings(LedgerHeader)); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	for i, e := range rows {
		values := []any{e.ItemCode, e.Description, e.Status.String(), e.Quantity}
		if err := workbook.SetRow(f, sheet, i+2, values); err != nil {
			return &ExportError{Path: path, Err: err}
		}
	}

	if err := workbook.Save(f, path); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// CatalogRow is one (code, description) pair entered for a new catalog.
type CatalogRow struct {
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
}

// FilterRows trims both fields and drops rows whose code is blank or the
// input placeholder.
func FilterRows(rows []CatalogRow) []CatalogRow {
	out := make([]CatalogRow, 0, len(rows))
	for _, r := range rows {
		code := strings.TrimSpace(r.Code)
		if code == "" || code == codePlaceholder {
			continue
		}
		out = append(out, CatalogRow{Code: code, Description: strings.TrimSpace(r.Description)})
	}
	return out
}

// RowFailure records a row whose barcode image could not be produced.
type RowFailure struct {
	Row  int
	Code string
	Err  error
}

func (f RowFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Row   int    `json:"row"`
		Code  string `json:"code"`
		Error string `json:"error"`
	}{f.Row, f.Code, msg})
}

// BatchReport summarizes a barcode catalog export.
type BatchReport struct {
	Path     string       `json:"path"`
	Written  int          `json:"written"`
	Failures []RowFailure `json:"failures,omitempty"`
}

func (r BatchReport) OK() bool {
	return len(r.Failures) == 0
}

// Err joins every row failure, or returns nil.
func (r BatchReport) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = fmt.Errorf("row %d: %w", f.Row, f.Err)
	}
	return errors.Join(errs...)
}

// CatalogWithBarcodes writes filtered rows with a Code128 image anchored in
// the Barcode column. A row whose code cannot be encoded keeps its text and
// is listed in the report; the export still succeeds.
func CatalogWithBarcodes(path string, rows []CatalogRow, opts Options) (BatchReport, error) {
	report := BatchReport{Path: path}
	if strings.TrimSpace(path) == "" {
		return report, &ExportError{Err: ErrNoDestination}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := setProperties(f, "Item catalog", opts.Identifier); err != nil {
		return report, &ExportError{Path: path, Err: err}
	}
	if err := workbook.SetRow(f, sheet, 1, workbook.Strings(CatalogHeader)); err != nil {
		return report, &ExportError{Path: path, Err: err}
	}
	if opts.ColumnWidth > 0 {
		if err := f.SetColWidth(sheet, "C", "C", opts.ColumnWidth); err != nil {
			return report, &ExportError{Path: path, Err: err}
		}
	}

	height := rowHeight(opts)
	for i, r := range FilterRows(rows) {
		row := i + 2
		if err := workbook.SetRow(f, sheet, row, []any{r.Code, r.Description}); err != nil {
			return report, &ExportError{Path: path, Err: err}
		}
		report.Written++

		img, err := barcode.Generate(r.Code, opts.Barcode)
		if err != nil {
			report.Failures = append(report.Failures, RowFailure{Row: row, Code: r.Code, Err: err})
			continue
		}

		cell, err := excelize.CoordinatesToCellName(3, row)
		if err != nil {
			return report, &ExportError{Path: path, Err: err}
		}
		pic := &excelize.Picture{
			Extension: ".png",
			File:      img,
			Format: &excelize.GraphicOptions{
				AltText: r.Code,
				OffsetX: imagePadding / 2,
				OffsetY: imagePadding / 2,
			},
		}
		if err := f.AddPictureFromBytes(sheet, cell, pic); err != nil {
			return report, &ExportError{Path: path, Err: err}
		}
		if err := f.SetRowHeight(sheet, row, height); err != nil {
			return report, &ExportError{Path: path, Err: err}
		}
	}

	if err := workbook.Save(f, path); err != nil {
		return BatchReport{Path: path}, &ExportError{Path: path, Err: err}
	}
	return report, nil
}

func rowHeight(opts Options) float64 {
	h := float64(opts.Barcode.Height)*pointsPerPixel + imagePadding
	if opts.RowHeight > h {
		h = opts.RowHeight
	}
	if h > maxRowHeight {
		h = maxRowHeight
	}
	return h
}

func setProperties(f *excelize.File, title, identifier string) error {
	return f.SetDocProps(&excelize.DocProperties{
		Creator:    "trackr",
		Title:      title,
		Identifier: identifier,
	})
}
