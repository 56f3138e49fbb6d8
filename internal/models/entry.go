// ABOUTME: Catalog and ledger entry models for tracked items.
// ABOUTME: Defines custody status and scanning mode with their display labels.

package models

import (
	"fmt"
	"strings"
)

// CatalogEntry is one row of the reference catalog. ItemCode is stored as
// given; comparisons go through Normalize.
type CatalogEntry struct {
	ItemCode    string `json:"item_code"`
	Description string `json:"description"`
}

// Status is the custody state of a ledger entry.
type Status int

const (
	CheckedIn Status = iota
	CheckedOut
)

func (s Status) String() string {
	if s == CheckedOut {
		return "Checked Out"
	}
	return "Checked In"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "checked in":
		*s = CheckedIn
	case "checked out":
		*s = CheckedOut
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Mode selects which transition table applies to a scanned code.
type Mode int

const (
	CheckIn Mode = iota
	CheckOut
)

func (m Mode) String() string {
	if m == CheckOut {
		return "Check Out"
	}
	return "Check In"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == CheckIn {
		return CheckOut
	}
	return CheckIn
}

// Status returns the status a fresh entry gets when first scanned in this mode.
func (m Mode) Status() Status {
	if m == CheckOut {
		return CheckedOut
	}
	return CheckedIn
}

// ParseMode accepts "check-in", "in", "Check In" and the check-out equivalents.
func ParseMode(s string) (Mode, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "checkin", "in":
		return CheckIn, nil
	case "checkout", "out":
		return CheckOut, nil
	default:
		return CheckIn, fmt.Errorf("unknown mode %q", s)
	}
}

// LedgerEntry is the tracked state of one item during a session.
type LedgerEntry struct {
	ItemCode    string `json:"item_code"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Quantity    int    `json:"quantity"`
}
