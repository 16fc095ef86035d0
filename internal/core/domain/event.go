package domain

import (
	"fmt"
	"time"
)

// TimestampLayout is the layout of mutation log timestamps.
const TimestampLayout = "2006-01-02 15:04:05.000000"

type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRemoved EventKind = "removed"
)

// MutationEvent records one successful add or remove.
type MutationEvent struct {
	ID       string
	Kind     EventKind
	Item     string
	Quantity Quantity
	At       time.Time
}

// String renders the event as a mutation log entry, e.g.
// "2024-05-01 10:00:00.000000: Added 10 of apple".
func (e MutationEvent) String() string {
	verb := "Added"
	if e.Kind == EventRemoved {
		verb = "Removed"
	}
	return fmt.Sprintf("%s: %s %s of %s", e.At.Format(TimestampLayout), verb, e.Quantity, e.Item)
}
