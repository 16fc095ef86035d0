package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/port"
)

// MemoryLog is an append-only in-memory mutation log. It doubles as a
// buffer: Flush hands the buffered events to other logs once the ledger
// change they describe has been persisted.
type MemoryLog struct {
	events []domain.MutationEvent
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (m *MemoryLog) Append(_ context.Context, event domain.MutationEvent) error {
	m.events = append(m.events, event)
	return nil
}

// Entries returns the recorded entries as text, oldest first.
func (m *MemoryLog) Entries() []string {
	entries := make([]string, len(m.events))
	for i, e := range m.events {
		entries[i] = e.String()
	}
	return entries
}

func (m *MemoryLog) Len() int {
	return len(m.events)
}

// Flush appends every buffered event to each sink and empties the buffer.
// A failing sink does not stop the others; all failures are returned
// joined.
func (m *MemoryLog) Flush(ctx context.Context, sinks ...port.MutationLog) error {
	var errs error
	for i, sink := range sinks {
		for _, event := range m.events {
			if err := sink.Append(ctx, event); err != nil {
				errs = errors.Join(errs, fmt.Errorf("sink %d: event %s: %w", i, event.ID, err))
				break
			}
		}
	}
	m.events = nil
	return errs
}
