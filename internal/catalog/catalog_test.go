// ABOUTME: Tests for loading, looking up, and persisting catalogs.
// ABOUTME: Uses real xlsx files written to temp directories.

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"
)

func writeSheet(t *testing.T, path string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, r := range rows {
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &values); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

func readSheet(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	return rows
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	writeSheet(t, path, [][]string{
		{"Item Code", "Description", "Shelf"},
		{"ABC123", "Widget", "A1"},
		{"X-9", "Gadget"},
	})

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Path != path {
		t.Errorf("expected path %q, got %q", path, c.Path)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	entries := c.Entries()
	if entries[0].ItemCode != "ABC123" || entries[0].Description != "Widget" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Description != "Gadget" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestLoadColumnsInAnyPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	writeSheet(t, path, [][]string{
		{"Shelf", " Description ", "Item Code"},
		{"A1", "Widget", "abc123"},
	})

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	desc, ok := c.Lookup("ABC123")
	if !ok || desc != "Widget" {
		t.Errorf("expected Widget, got %q (found=%v)", desc, ok)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	missingCols := filepath.Join(dir, "nocols.xlsx")
	writeSheet(t, missingCols, [][]string{{"Code", "Description"}, {"a", "b"}})

	empty := filepath.Join(dir, "empty.xlsx")
	writeSheet(t, empty, nil)

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "no path", path: "", wantErr: ErrNoPath},
		{name: "blank path", path: "  ", wantErr: ErrNoPath},
		{name: "missing columns", path: missingCols, wantErr: ErrMissingColumns},
		{name: "empty sheet", path: empty, wantErr: ErrMissingColumns},
		{name: "missing file", path: filepath.Join(dir, "nope.xlsx")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if c != nil {
				t.Error("expected nil catalog on error")
			}
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	writeSheet(t, path, [][]string{
		{"Item Code", "Description"},
		{"abc123", "Widget"},
		{"ABC123", "Duplicate"},
		{"", "Orphan"},
	})

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	desc, ok := c.Lookup("  Abc123 ")
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if desc != "Widget" {
		t.Errorf("expected first match 'Widget', got %q", desc)
	}

	if _, ok := c.Lookup("zzz"); ok {
		t.Error("expected lookup miss for unknown code")
	}
	if _, ok := c.Lookup("   "); ok {
		t.Error("expected lookup miss for blank code")
	}
	if c.Len() != 2 {
		t.Errorf("expected blank-code row to be excluded from entries, got %d", c.Len())
	}
}

func TestAppendPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	writeSheet(t, path, [][]string{
		{"Item Code", "Description", "Shelf"},
		{"abc123", "Widget", "A1"},
	})

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := c.Append("NEW-1", "Sprocket"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if desc, ok := c.Lookup("new-1"); !ok || desc != "Sprocket" {
		t.Errorf("expected in-memory entry, got %q (found=%v)", desc, ok)
	}

	rows := readSheet(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows on disk, got %d: %v", len(rows), rows)
	}
	if rows[0][2] != "Shelf" || rows[1][2] != "A1" {
		t.Errorf("expected extra column preserved, got %v", rows[:2])
	}
	if rows[2][0] != "NEW-1" || rows[2][1] != "Sprocket" {
		t.Errorf("expected raw code stored as given, got %v", rows[2])
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("expected 2 entries after reload, got %d", reloaded.Len())
	}
}

func TestAppendPersistFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "gone", "catalog.xlsx"))

	err := c.Append("abc", "Widget")
	var persistErr *PersistError
	if !errors.As(err, &persistErr) {
		t.Fatalf("expected *PersistError, got %v", err)
	}
	if _, ok := c.Lookup("ABC"); !ok {
		t.Error("expected entry to remain in memory after persist failure")
	}
}

func TestAppendRejectsEmptyCode(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "catalog.xlsx"))
	if err := c.Append("   ", "Nothing"); !errors.Is(err, ErrEmptyCode) {
		t.Errorf("expected ErrEmptyCode, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("expected no entry to be added")
	}
}

func TestSaveLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	c := New(path)

	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take lock: %v", err)
	}
	defer func() { _ = other.Unlock() }()

	err = c.Save()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("expected catalog not to be written while locked")
	}
}

func TestNewCatalogSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.xlsx")
	c := New(path)
	if err := c.Append("T-1", "Torque wrench"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if desc, ok := loaded.Lookup("t-1"); !ok || desc != "Torque wrench" {
		t.Errorf("expected saved entry, got %q (found=%v)", desc, ok)
	}
}

func TestAppendLeavesRestOfWorkbookAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]any{"Item Code", "Description", "Price"})
	_ = f.SetSheetRow("Sheet1", "A2", &[]any{"abc123", "Widget", 9.5})
	if err := f.SetColWidth("Sheet1", "B", "B", 33); err != nil {
		t.Fatalf("SetColWidth: %v", err)
	}
	if _, err := f.NewSheet("Suppliers"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	_ = f.SetCellValue("Suppliers", "A1", "Acme")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = f.Close()

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Append("X9", "New"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer func() { _ = got.Close() }()

	if sheets := got.GetSheetList(); len(sheets) != 2 || sheets[1] != "Suppliers" {
		t.Errorf("expected both sheets kept, got %v", sheets)
	}
	if v, _ := got.GetCellValue("Suppliers", "A1"); v != "Acme" {
		t.Errorf("expected second sheet contents kept, got %q", v)
	}
	typ, err := got.GetCellType("Sheet1", "C2")
	if err != nil {
		t.Fatalf("GetCellType: %v", err)
	}
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		t.Errorf("expected numeric price to stay numeric, got cell type %v", typ)
	}
	if w, _ := got.GetColWidth("Sheet1", "B"); w != 33 {
		t.Errorf("expected column width kept, got %v", w)
	}
	if v, _ := got.GetCellValue("Sheet1", "A3"); v != "X9" {
		t.Errorf("expected new row at A3, got %q", v)
	}
}

func TestAppendToExistingFileWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	writeSheet(t, path, [][]string{{"Item Code", "Description"}, {"abc", "Widget"}})
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	other := flock.New(path + ".lock")
	if locked, err := other.TryLock(); err != nil || !locked {
		t.Fatalf("could not take lock: %v", err)
	}
	defer func() { _ = other.Unlock() }()

	err = c.Append("def", "Gadget")
	var persistErr *PersistError
	if !errors.As(err, &persistErr) || !errors.Is(err, ErrLocked) {
		t.Fatalf("expected locked PersistError, got %v", err)
	}
	if rows := readSheet(t, path); len(rows) != 2 {
		t.Errorf("expected file untouched while locked, got %v", rows)
	}
	if _, ok := c.Lookup("def"); !ok {
		t.Error("expected entry kept in memory")
	}
}

func TestSaveLeavesLockFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	c := New(path)
	if err := c.Append("abc", "Widget"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := c.Append("def", "Gadget"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := os.Stat(path + ".lock"); err != nil {
		t.Errorf("expected lock file to stay on disk: %v", err)
	}
	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Errorf("expected lock to be released, got locked=%v err=%v", locked, err)
	}
	_ = other.Unlock()

	if rows := readSheet(t, path); len(rows) != 3 || rows[2][0] != "def" {
		t.Errorf("unexpected rows %v", rows)
	}
}
