package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

// JSONFileStore keeps a ledger snapshot as a single JSON object mapping item
// names to quantities. Writes overwrite the whole file.
type JSONFileStore struct{}

func NewJSONFileStore() *JSONFileStore {
	return &JSONFileStore{}
}

func (s *JSONFileStore) Read(ctx context.Context, path string) (domain.Snapshot, error) {
	if domain.IsBlank(path) {
		return nil, &domain.PersistError{Op: "load", Path: path, Kind: domain.KindBadPath, Err: errors.New("file path cannot be empty")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.PersistError{Op: "load", Path: path, Kind: domain.KindOtherIO, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.PersistError{Op: "load", Path: path, Kind: openFailureKind(err, true), Err: err}
	}
	defer f.Close()

	snap, err := DecodeSnapshot(f)
	if err != nil {
		kind := domain.KindOtherIO
		switch {
		case errors.Is(err, domain.ErrMalformedJSON):
			kind = domain.KindMalformedJSON
		case errors.Is(err, domain.ErrSchemaViolation):
			kind = domain.KindSchemaViolation
		}
		return nil, &domain.PersistError{Op: "load", Path: path, Kind: kind, Err: err}
	}
	return snap, nil
}

func (s *JSONFileStore) Write(ctx context.Context, path string, snap domain.Snapshot) error {
	if domain.IsBlank(path) {
		return &domain.PersistError{Op: "save", Path: path, Kind: domain.KindBadPath, Err: errors.New("file path cannot be empty")}
	}
	if err := ctx.Err(); err != nil {
		return &domain.PersistError{Op: "save", Path: path, Kind: domain.KindOtherIO, Err: err}
	}
	if err := snap.Validate(); err != nil {
		return &domain.PersistError{Op: "save", Path: path, Kind: domain.KindSchemaViolation, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &domain.PersistError{Op: "save", Path: path, Kind: openFailureKind(err, false), Err: err}
	}
	defer f.Close()

	if err := EncodeSnapshot(f, snap); err != nil {
		return &domain.PersistError{Op: "save", Path: path, Kind: domain.KindOtherIO, Err: err}
	}
	if err := f.Close(); err != nil {
		return &domain.PersistError{Op: "save", Path: path, Kind: domain.KindOtherIO, Err: err}
	}
	return nil
}

// openFailureKind classifies an error returned by os.Open or os.Create.
// A missing file only counts as file-not-found when reading.
func openFailureKind(err error, reading bool) domain.FailureKind {
	switch {
	case reading && errors.Is(err, fs.ErrNotExist):
		return domain.KindFileNotFound
	case errors.Is(err, fs.ErrPermission):
		return domain.KindPermissionDenied
	default:
		return domain.KindOtherIO
	}
}

// DecodeSnapshot reads a JSON object of item names to non-negative numbers.
// Keys keep the order in which they appear; a repeated key keeps its first
// position and its last value.
func DecodeSnapshot(r io.Reader) (domain.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedJSON, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedJSON, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: invalid data format - expected object", domain.ErrSchemaViolation)
	}

	var snap domain.Snapshot
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedJSON, err)
		}
		item, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: invalid item name '%v' - must be string", domain.ErrSchemaViolation, tok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedJSON, err)
		}
		num, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: invalid quantity '%v' for item '%s' - must be non-negative number", domain.ErrSchemaViolation, value, item)
		}
		qty, err := domain.ParseQuantity(num.String())
		if err != nil || qty.IsNegative() {
			return nil, fmt.Errorf("%w: invalid quantity '%s' for item '%s' - must be non-negative number", domain.ErrSchemaViolation, num, item)
		}

		if i, dup := index[item]; dup {
			snap[i].Quantity = qty
			continue
		}
		index[item] = len(snap)
		snap = append(snap, domain.Entry{Item: item, Quantity: qty})
	}
	return snap, nil
}

// EncodeSnapshot writes snap as an indented JSON object in snapshot order.
func EncodeSnapshot(w io.Writer, snap domain.Snapshot) error {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, e := range snap {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := json.Marshal(e.Item)
		if err != nil {
			return fmt.Errorf("encode item %q: %w", e.Item, err)
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.WriteString(e.Quantity.String())
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("indent ledger: %w", err)
	}
	out.WriteByte('\n')

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
