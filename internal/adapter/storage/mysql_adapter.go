package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS ledger_events (
	id         CHAR(36)     NOT NULL PRIMARY KEY,
	kind       VARCHAR(16)  NOT NULL,
	item       VARCHAR(255) NOT NULL,
	quantity   VARCHAR(64)  NOT NULL,
	created_at DATETIME(6)  NOT NULL,
	INDEX idx_ledger_events_item (item, created_at)
)`

// MySQLJournal stores mutation events in the ledger_events table.
type MySQLJournal struct {
	db *sql.DB
}

func NewMySQLJournal(db *sql.DB) *MySQLJournal {
	return &MySQLJournal{db: db}
}

// EnsureSchema creates the ledger_events table when missing.
func (m *MySQLJournal) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create ledger_events: %w", err)
	}
	return nil
}

func (m *MySQLJournal) Append(ctx context.Context, event domain.MutationEvent) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO ledger_events (id, kind, item, quantity, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.ID, string(event.Kind), event.Item, event.Quantity.String(), event.At,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Events returns the journal of item, oldest first.
func (m *MySQLJournal) Events(ctx context.Context, item string) ([]domain.MutationEvent, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, kind, item, quantity, created_at
		FROM ledger_events WHERE item = ?
		ORDER BY created_at, id`, item,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.MutationEvent
	for rows.Next() {
		var (
			e         domain.MutationEvent
			kind, qty string
			at        time.Time
		)
		if err := rows.Scan(&e.ID, &kind, &e.Item, &qty, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Quantity, err = domain.ParseQuantity(qty)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		e.Kind = domain.EventKind(kind)
		e.At = at
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
