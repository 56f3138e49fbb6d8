// ABOUTME: In-memory check-in/check-out ledger keyed by normalized item code.
// ABOUTME: Implements the scan transition table and manual quantity edits.

package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/riegojerey/ExoidTrackr/internal/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a non-negative whole number")
	ErrNotTracked      = errors.New("item is not in the ledger")
)

// Ledger maps normalized codes to entries and remembers insertion order.
// It is not safe for concurrent use.
type Ledger struct {
	order   []string
	entries map[string]*models.LedgerEntry
}

func New() *Ledger {
	return &Ledger{entries: make(map[string]*models.LedgerEntry)}
}

func (l *Ledger) Len() int {
	return len(l.order)
}

// Get returns the entry for code, normalizing it first.
func (l *Ledger) Get(code string) (models.LedgerEntry, bool) {
	e, ok := l.entries[models.Normalize(code)]
	if !ok {
		return models.LedgerEntry{}, false
	}
	return *e, true
}

// Process applies one scan of code in the given mode. description is only
// used when the code is new to the ledger. It returns false when the code
// normalizes to empty and nothing changed.
//
// Check-in of a checked-out entry returns it without adding a unit; check-in
// of a checked-in entry adds one. Check-out only ever changes the status.
func (l *Ledger) Process(mode models.Mode, code, description string) (models.LedgerEntry, bool) {
	key := models.Normalize(code)
	if key == "" {
		return models.LedgerEntry{}, false
	}

	e, ok := l.entries[key]
	if !ok {
		e = &models.LedgerEntry{
			ItemCode:    key,
			Description: description,
			Status:      mode.Status(),
			Quantity:    1,
		}
		l.entries[key] = e
		l.order = append(l.order, key)
		return *e, true
	}

	switch mode {
	case models.CheckIn:
		if e.Status == models.CheckedOut {
			e.Status = models.CheckedIn
		} else {
			e.Quantity++
		}
	case models.CheckOut:
		e.Status = models.CheckedOut
	}
	return *e, true
}

// Adjust adds delta to an entry's quantity, clamping at zero.
func (l *Ledger) Adjust(code string, delta int) (models.LedgerEntry, bool) {
	e, ok := l.entries[models.Normalize(code)]
	if !ok {
		return models.LedgerEntry{}, false
	}
	e.Quantity += delta
	if e.Quantity < 0 {
		e.Quantity = 0
	}
	return *e, true
}

// SetQuantity parses raw as the new quantity. On a parse failure or a
// negative value the stored quantity is left as is and the returned entry
// carries it so callers can re-render the previous value.
func (l *Ledger) SetQuantity(code, raw string) (models.LedgerEntry, error) {
	e, ok := l.entries[models.Normalize(code)]
	if !ok {
		return models.LedgerEntry{}, ErrNotTracked
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return *e, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	e.Quantity = n
	return *e, nil
}

// Remove forgets an entry entirely. It reports whether anything was removed.
func (l *Ledger) Remove(code string) bool {
	key := models.Normalize(code)
	if _, ok := l.entries[key]; !ok {
		return false
	}
	delete(l.entries, key)
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Rows returns a snapshot of every entry in insertion order.
func (l *Ledger) Rows() []models.LedgerEntry {
	rows := make([]models.LedgerEntry, 0, len(l.order))
	for _, k := range l.order {
		rows = append(rows, *l.entries[k])
	}
	return rows
}

// Summary holds per-status totals for reporting.
type Summary struct {
	Items      int `json:"items"`
	CheckedIn  int `json:"checked_in"`
	CheckedOut int `json:"checked_out"`
	Units      int `json:"units"`
}

func (l *Ledger) Summary() Summary {
	var s Summary
	for _, k := range l.order {
		e := l.entries[k]
		s.Items++
		s.Units += e.Quantity
		if e.Status == models.CheckedOut {
			s.CheckedOut++
		} else {
			s.CheckedIn++
		}
	}
	return s
}
