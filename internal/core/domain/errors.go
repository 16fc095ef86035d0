package domain

import (
	"errors"
	"fmt"
)

// Errors reported by ledger operations. Every failure returned by the
// ledger matches exactly one of these with errors.Is.
var (
	// ErrTypeMismatch is returned when a value is not of the expected kind,
	// e.g. a quantity that does not parse as a number.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrEmptyName is returned for an item name or file path that is empty
	// or only whitespace.
	ErrEmptyName = errors.New("empty name")

	// ErrInvalidQuantity is returned for a negative quantity on add, a
	// non-positive quantity on remove, or a negative threshold.
	ErrInvalidQuantity = errors.New("invalid quantity")

	ErrNotFound          = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrIOFailure covers missing files, denied permissions and any other
	// I/O fault while loading or saving, and failing mutation log sinks.
	ErrIOFailure = errors.New("i/o failure")

	// ErrMalformedJSON is returned when a ledger file is not valid JSON.
	ErrMalformedJSON = errors.New("malformed json")

	// ErrSchemaViolation is returned when a ledger file is valid JSON but
	// not an object of item names to non-negative numbers.
	ErrSchemaViolation = errors.New("schema violation")
)

// FailureKind classifies a load or save failure.
type FailureKind string

const (
	KindBadPath          FailureKind = "bad-path"
	KindFileNotFound     FailureKind = "file-not-found"
	KindPermissionDenied FailureKind = "permission-denied"
	KindMalformedJSON    FailureKind = "malformed-json"
	KindSchemaViolation  FailureKind = "schema-violation"
	KindOtherIO          FailureKind = "other-io-error"
)

// sentinel maps a kind onto the error taxonomy.
func (k FailureKind) sentinel() error {
	switch k {
	case KindBadPath:
		return ErrEmptyName
	case KindMalformedJSON:
		return ErrMalformedJSON
	case KindSchemaViolation:
		return ErrSchemaViolation
	default:
		return ErrIOFailure
	}
}

// PersistError describes a failed load or save of a ledger file.
type PersistError struct {
	Op   string // "load" or "save"
	Path string
	Kind FailureKind
	Err  error
}

func (e *PersistError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *PersistError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// KindOf returns the failure kind carried by err, if any.
func KindOf(err error) (FailureKind, bool) {
	var pe *PersistError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
