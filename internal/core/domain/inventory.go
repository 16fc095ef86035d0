package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultFile is the ledger file used when no path is configured.
const DefaultFile = "inventory.json"

// Entry is a single item held in the ledger.
type Entry struct {
	Item     string
	Quantity Quantity
}

// Snapshot is an ordered copy of ledger contents.
type Snapshot []Entry

// Validate checks that every entry has a usable name, a non-negative
// quantity, and that no name appears twice.
func (s Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, e := range s {
		if IsBlank(e.Item) || !utf8.ValidString(e.Item) {
			return fmt.Errorf("%w: invalid item name %q - must be a non-empty string", ErrSchemaViolation, e.Item)
		}
		if e.Quantity.IsNegative() {
			return fmt.Errorf("%w: invalid quantity '%s' for item '%s' - must be non-negative number", ErrSchemaViolation, e.Quantity, e.Item)
		}
		if _, dup := seen[e.Item]; dup {
			return fmt.Errorf("%w: duplicate item %q", ErrSchemaViolation, e.Item)
		}
		seen[e.Item] = struct{}{}
	}
	return nil
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CheckName validates an item name supplied to a ledger operation.
func CheckName(item string) error {
	if IsBlank(item) {
		return fmt.Errorf("%w: item name cannot be empty", ErrEmptyName)
	}
	if !utf8.ValidString(item) {
		return fmt.Errorf("%w: item name %q is not valid UTF-8 text", ErrTypeMismatch, item)
	}
	return nil
}
