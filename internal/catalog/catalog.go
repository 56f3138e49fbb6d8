// ABOUTME: Spreadsheet-backed item catalog with lookup and append-with-persist.
// ABOUTME: Appends write one row into the existing workbook, leaving other cells and sheets alone.

package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"github.com/riegojerey/ExoidTrackr/internal/workbook"
	"github.com/xuri/excelize/v2"
)

const (
	ColumnItemCode    = "Item Code"
	ColumnDescription = "Description"

	defaultSheet = "Sheet1"
)

var (
	ErrNoPath         = errors.New("no catalog file selected")
	ErrMissingColumns = fmt.Errorf("catalog must have %q and %q columns", ColumnItemCode, ColumnDescription)
	ErrNotFound       = errors.New("item code not found in catalog")
	ErrEmptyCode      = errors.New("item code cannot be empty")
	ErrLocked         = errors.New("catalog file is locked by another process")
)

// LoadError reports a catalog that could not be read. No state is kept.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load catalog: %v", e.Err)
	}
	return fmt.Sprintf("load catalog %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PersistError reports a catalog that changed in memory but was not written.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save catalog %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Catalog is an ordered code->description table plus the file it came from.
// Duplicate codes are kept; the first one wins on lookup.
type Catalog struct {
	Path string

	sheet   string
	header  []string
	codeCol int
	descCol int
	rows    [][]string
	entries []models.CatalogEntry
}

// New returns an empty catalog with the standard header that will be saved to path.
func New(path string) *Catalog {
	return &Catalog{
		Path:    path,
		sheet:   defaultSheet,
		header:  []string{ColumnItemCode, ColumnDescription},
		codeCol: 0,
		descCol: 1,
	}
}

// Load reads the catalog at path. The first row must contain the
// "Item Code" and "Description" headers; other columns are carried along.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &LoadError{Err: ErrNoPath}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &LoadError{Path: path, Err: ErrMissingColumns}
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Path: path, Err: ErrMissingColumns}
	}

	c := &Catalog{
		Path:    path,
		sheet:   sheet,
		codeCol: -1,
		descCol: -1,
	}
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		c.header = append(c.header, name)
		switch {
		case name == ColumnItemCode && c.codeCol < 0:
			c.codeCol = i
		case name == ColumnDescription && c.descCol < 0:
			c.descCol = i
		}
	}
	if c.codeCol < 0 || c.descCol < 0 {
		return nil, &LoadError{Path: path, Err: ErrMissingColumns}
	}

	for _, r := range rows[1:] {
		c.rows = append(c.rows, c.pad(r))
	}
	c.rebuild()

	return c, nil
}

func (c *Catalog) pad(r []string) []string {
	width := len(c.header)
	if len(r) > width {
		width = len(r)
	}
	out := make([]string, width)
	copy(out, r)
	return out
}

func (c *Catalog) rebuild() {
	c.entries = c.entries[:0]
	for _, r := range c.rows {
		code := r[c.codeCol]
		if strings.TrimSpace(code) == "" {
			continue
		}
		c.entries = append(c.entries, models.CatalogEntry{
			ItemCode:    code,
			Description: r[c.descCol],
		})
	}
}

// Entries returns a copy of the catalog entries in file order.
func (c *Catalog) Entries() []models.CatalogEntry {
	out := make([]models.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the description of the first entry whose code matches code
// after normalization.
func (c *Catalog) Lookup(code string) (string, bool) {
	key := models.Normalize(code)
	if key == "" {
		return "", false
	}
	for _, e := range c.entries {
		if models.Normalize(e.ItemCode) == key {
			return e.Description, true
		}
	}
	return "", false
}

// Append adds an entry and writes it as a new row of Path. The entry stays
// in memory even when the returned error is a *PersistError.
func (c *Catalog) Append(code, description string) error {
	if models.Normalize(code) == "" {
		return ErrEmptyCode
	}

	row := make([]string, len(c.header))
	row[c.codeCol] = code
	row[c.descCol] = description
	c.rows = append(c.rows, row)
	c.entries = append(c.entries, models.CatalogEntry{ItemCode: code, Description: description})

	return c.persistRow(len(c.rows)+1, row)
}

// persistRow writes one row into the existing file at Path, leaving every
// other sheet, cell, and style as it was. A file that does not exist yet is
// written in full.
func (c *Catalog) persistRow(rowNum int, row []string) error {
	if strings.TrimSpace(c.Path) == "" {
		return &PersistError{Err: ErrNoPath}
	}
	if _, err := os.Stat(c.Path); errors.Is(err, os.ErrNotExist) {
		return c.Save()
	}

	unlock, err := c.lock()
	if err != nil {
		return err
	}
	defer unlock()

	f, err := excelize.OpenFile(c.Path)
	if err != nil {
		return &PersistError{Path: c.Path, Err: err}
	}
	defer func() { _ = f.Close() }()

	if err := workbook.SetRow(f, c.sheet, rowNum, workbook.Strings(row)); err != nil {
		return &PersistError{Path: c.Path, Err: err}
	}
	if err := workbook.Save(f, c.Path); err != nil {
		return &PersistError{Path: c.Path, Err: err}
	}
	return nil
}

// lock takes <Path>.lock. The lock file is left on disk after release.
func (c *Catalog) lock() (func(), error) {
	lock := flock.New(c.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, &PersistError{Path: c.Path, Err: fmt.Errorf("acquire lock: %w", err)}
	}
	if !locked {
		return nil, &PersistError{Path: c.Path, Err: ErrLocked}
	}
	return func() { _ = lock.Unlock() }, nil
}

// Save rewrites Path from the in-memory rows while holding <Path>.lock.
// Only the catalog sheet is written, as text, so it is meant for catalogs
// created with New.
func (c *Catalog) Save() error {
	if strings.TrimSpace(c.Path) == "" {
		return &PersistError{Err: ErrNoPath}
	}

	unlock, err := c.lock()
	if err != nil {
		return err
	}
	defer unlock()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := c.sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return &PersistError{Path: c.Path, Err: err}
		}
	}

	if err := workbook.SetRow(f, sheet, 1, workbook.Strings(c.header)); err != nil {
		return &PersistError{Path: c.Path, Err: err}
	}
	for i, r := range c.rows {
		if err := workbook.SetRow(f, sheet, i+2, workbook.Strings(r)); err != nil {
			return &PersistError{Path: c.Path, Err: err}
		}
	}

	if err := workbook.Save(f, c.Path); err != nil {
		return &PersistError{Path: c.Path, Err: err}
	}
	return nil
}
