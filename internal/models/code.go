// ABOUTME: Item code normalization used for every ledger key and catalog match.
// ABOUTME: Folds width variants, trims whitespace, and lowercases.

package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical key for a raw item code. An empty result
// means no code was entered.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(raw)))
}

// SameCode reports whether two raw codes normalize to the same key.
func SameCode(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
