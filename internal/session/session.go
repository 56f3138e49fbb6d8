// ABOUTME: Command handler mapping UI events onto catalog, ledger, and export calls.
// ABOUTME: Reports every outcome as a Notification and redraws through LedgerRefreshed.

package session

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/riegojerey/ExoidTrackr/internal/catalog"
	"github.com/riegojerey/ExoidTrackr/internal/export"
	"github.com/riegojerey/ExoidTrackr/internal/ledger"
	"github.com/riegojerey/ExoidTrackr/internal/models"
)

var (
	ErrNoCatalog       = errors.New("no catalog loaded")
	ErrNothingToExport = errors.New("no items to export")
	ErrNoItem          = errors.New("no item selected")
)

// Severity of a Notification.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// Notification is a user-facing message.
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// View receives the session's output events.
type View interface {
	Notify(n Notification)
	Refresh(rows []models.LedgerEntry)
}

// Prompter asks the user for a description of an unknown code. ok is false
// when the user cancelled.
type Prompter interface {
	PromptDescription(code string) (description string, ok bool)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(code string) (string, bool)

func (f PromptFunc) PromptDescription(code string) (string, bool) { return f(code) }

// Options configures a Session.
type Options struct {
	Mode models.Mode
	// PromptUnknown enables adding unknown codes through the Prompter.
	PromptUnknown bool
	Prompter      Prompter
	Export        export.Options
	Logger        *log.Logger
}

// Session holds one scanning session's catalog, ledger, mode, and catalog
// draft. Calls must not overlap.
type Session struct {
	ID uuid.UUID

	view     View
	opts     Options
	logger   *log.Logger
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	mode     models.Mode
	draft    []export.CatalogRow
	prompter Prompter
}

func New(view View, opts Options) *Session {
	id := uuid.New()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		ID:       id,
		view:     view,
		opts:     opts,
		logger:   logger.With("session", id.String()[:8]),
		ledger:   ledger.New(),
		mode:     opts.Mode,
		prompter: opts.Prompter,
	}
}

func (s *Session) Mode() models.Mode { return s.mode }

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

func (s *Session) Rows() []models.LedgerEntry { return s.ledger.Rows() }

func (s *Session) Summary() ledger.Summary { return s.ledger.Summary() }

// SetPrompter replaces the prompter used for unknown codes.
func (s *Session) SetPrompter(p Prompter) { s.prompter = p }

// notify shows a message to the user. It is only logged at debug level;
// failures worth an operator's attention are logged where they happen.
func (s *Session) notify(sev Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Debug("notification", "severity", sev.String(), "message", msg)
	if s.view != nil {
		s.view.Notify(Notification{Message: msg, Severity: sev})
	}
}

func (s *Session) refresh() {
	if s.view != nil {
		s.view.Refresh(s.ledger.Rows())
	}
}

// SelectFile loads the catalog at path. An empty path means the user
// picked nothing. On failure the previous catalog stays active.
func (s *Session) SelectFile(path string) error {
	c, err := catalog.Load(path)
	if err != nil {
		if errors.Is(err, catalog.ErrNoPath) {
			s.notify(Error, "No catalog file selected.")
		} else {
			s.notify(Error, "Failed to load catalog: %v", err)
		}
		return err
	}
	s.catalog = c
	s.logger.Info("catalog loaded", "path", path, "items", c.Len())
	s.notify(Info, "Catalog loaded: %d items from %s.", c.Len(), path)
	return nil
}

// SubmitCode processes a scanned or typed code in the current mode.
func (s *Session) SubmitCode(text string) error {
	if models.Normalize(text) == "" {
		return nil
	}
	if s.catalog == nil {
		s.notify(Error, "No catalog loaded. Select a catalog file first.")
		return ErrNoCatalog
	}

	code := strings.TrimSpace(text)
	mode := s.mode
	description, found := s.catalog.Lookup(code)
	if !found {
		if !s.opts.PromptUnknown || s.prompter == nil {
			s.notify(Error, "Item code %q not found in the catalog.", code)
			return fmt.Errorf("%w: %s", catalog.ErrNotFound, code)
		}

		answer, ok := s.prompter.PromptDescription(code)
		answer = strings.TrimSpace(answer)
		if !ok || answer == "" {
			s.notify(Info, "No description entered; %q was not added.", code)
			return nil
		}
		if err := s.AddToCatalog(code, answer); err != nil && !isPersist(err) {
			return err
		}
		description = answer
		mode = models.CheckIn
	}

	entry, _ := s.ledger.Process(mode, code, description)
	s.logger.Debug("item processed", "code", entry.ItemCode, "mode", mode.String(), "status", entry.Status.String(), "quantity", entry.Quantity)
	s.notify(Info, "%s: %s (%s), quantity %d.", entry.Status, entry.ItemCode, entry.Description, entry.Quantity)
	s.refresh()
	return nil
}

// AddToCatalog appends an entry to the loaded catalog and saves it. A save
// failure is reported as a warning: the entry is still usable this session.
func (s *Session) AddToCatalog(code, description string) error {
	if s.catalog == nil {
		s.notify(Error, "No catalog loaded. Select a catalog file first.")
		return ErrNoCatalog
	}

	err := s.catalog.Append(code, description)
	switch {
	case err == nil:
		s.notify(Info, "Added %q to the catalog and saved %s.", code, s.catalog.Path)
	case isPersist(err):
		s.logger.Warn("catalog save failed", "path", s.catalog.Path, "err", err)
		s.notify(Warning, "Added %q to the catalog in memory, but saving to disk failed: %v", code, err)
	default:
		s.notify(Error, "Could not add %q to the catalog: %v", code, err)
	}
	return err
}

func isPersist(err error) bool {
	var persistErr *catalog.PersistError
	return errors.As(err, &persistErr)
}

// LookupItem returns the catalog description for code.
func (s *Session) LookupItem(code string) (string, bool) {
	if s.catalog == nil {
		return "", false
	}
	return s.catalog.Lookup(code)
}

// ToggleMode flips between check-in and check-out.
func (s *Session) ToggleMode() models.Mode {
	s.SetMode(s.mode.Toggle())
	return s.mode
}

func (s *Session) SetMode(m models.Mode) {
	s.mode = m
	s.notify(Info, "Scan a barcode or enter item code (%s mode).", m)
}

// EditQuantity applies a typed quantity. Invalid text leaves the stored
// value and triggers a refresh so the previous value is shown again.
func (s *Session) EditQuantity(code, text string) error {
	entry, err := s.ledger.SetQuantity(code, text)
	switch {
	case errors.Is(err, ledger.ErrNotTracked):
		s.notify(Warning, "Item %q is not in the ledger.", strings.TrimSpace(code))
		return err
	case err != nil:
		s.notify(Warning, "Invalid quantity %q for %s; keeping %d.", text, entry.ItemCode, entry.Quantity)
		s.refresh()
		return err
	}
	s.refresh()
	return nil
}

// AdjustQuantity adds delta to an entry, never going below zero.
func (s *Session) AdjustQuantity(code string, delta int) error {
	if models.Normalize(code) == "" {
		s.notify(Warning, "No item selected.")
		return ErrNoItem
	}
	if _, ok := s.ledger.Adjust(code, delta); !ok {
		s.notify(Warning, "Item %q is not in the ledger.", strings.TrimSpace(code))
		return ledger.ErrNotTracked
	}
	s.refresh()
	return nil
}

// RemoveItem forgets an entry. Removing an untracked code does nothing.
func (s *Session) RemoveItem(code string) error {
	if models.Normalize(code) == "" {
		s.notify(Warning, "No item selected.")
		return ErrNoItem
	}
	if s.ledger.Remove(code) {
		s.notify(Info, "Removed %s from the ledger.", models.Normalize(code))
		s.refresh()
	}
	return nil
}

// Export writes the ledger to path.
func (s *Session) Export(path string) error {
	if strings.TrimSpace(path) == "" {
		s.notify(Error, "No destination selected.")
		return export.ErrNoDestination
	}
	if s.ledger.Len() == 0 {
		s.notify(Warning, "No items to export.")
		return ErrNothingToExport
	}

	opts := s.opts.Export
	opts.Identifier = s.ID.String()
	if err := export.Ledger(path, s.ledger.Rows(), opts); err != nil {
		s.logger.Error("ledger export failed", "path", path, "err", err)
		s.notify(Error, "Failed to export: %v", err)
		return err
	}
	s.logger.Info("ledger exported", "path", path, "items", s.ledger.Len())
	s.notify(Info, "Data exported to %s successfully.", path)
	return nil
}

// AddCatalogRow appends a row to the catalog draft and returns the draft size.
func (s *Session) AddCatalogRow(code, description string) int {
	s.draft = append(s.draft, export.CatalogRow{Code: code, Description: description})
	return len(s.draft)
}

// DraftRows returns a copy of the catalog draft.
func (s *Session) DraftRows() []export.CatalogRow {
	out := make([]export.CatalogRow, len(s.draft))
	copy(out, s.draft)
	return out
}

// ClearDraft discards the catalog draft.
func (s *Session) ClearDraft() { s.draft = nil }

// SaveCatalog writes the draft with barcode images to dir/name, using the
// default file name when name is empty. The draft is kept so a failed save
// can be retried.
func (s *Session) SaveCatalog(dir, name string) (export.BatchReport, error) {
	if strings.TrimSpace(dir) == "" {
		s.notify(Warning, "Please select a directory to save the catalog.")
		return export.BatchReport{}, export.ErrNoDestination
	}
	if name == "" {
		name = export.DefaultCatalogFile
	}
	path := filepath.Join(dir, name)

	opts := s.opts.Export
	opts.Identifier = s.ID.String()
	report, err := export.CatalogWithBarcodes(path, s.draft, opts)
	if err != nil {
		s.logger.Error("barcode catalog save failed", "path", path, "err", err)
		s.notify(Error, "Failed to save catalog: %v", err)
		return report, err
	}

	s.logger.Info("barcode catalog saved", "path", path, "rows", report.Written, "failures", len(report.Failures))
	if !report.OK() {
		codes := make([]string, len(report.Failures))
		for i, f := range report.Failures {
			codes[i] = fmt.Sprintf("%q", f.Code)
		}
		s.notify(Warning, "Saved %d items to %s; no barcode for %s.", report.Written, path, strings.Join(codes, ", "))
		return report, nil
	}
	s.notify(Info, "Barcode information saved to %s.", path)
	return report, nil
}
