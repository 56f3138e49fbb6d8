// ABOUTME: Shared helpers for writing xlsx workbooks to disk.
// ABOUTME: Saves through a temp file and rename so targets are never half written.

package workbook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// newFileMode is used for files that did not exist before Save.
const newFileMode os.FileMode = 0o644

// Save writes f to path atomically. The parent directory must already exist.
// An existing file keeps its permissions.
func Save(f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("destination directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("destination directory: %s is not a directory", dir)
	}

	mode := newFileMode
	if existing, err := os.Stat(path); err == nil {
		mode = existing.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, ".trackr-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("set file mode: %w", err)
	}

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// SetRow writes values into the given 1-based row starting at column A.
func SetRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// Strings converts a string slice to the []any form SetRow expects.
func Strings(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
