package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/port"
)

// Ledger maps item names to strictly positive quantities.
//
// A Ledger is not safe for concurrent use; callers sharing one must
// serialize access themselves.
type Ledger struct {
	items  map[string]domain.Quantity
	order  []string
	store  port.SnapshotStore
	mirror port.StockMirror
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

type Option func(*Ledger)

// WithMirror publishes the ledger to m after every successful load or save.
func WithMirror(m port.StockMirror) Option {
	return func(l *Ledger) { l.mirror = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source used for mutation events.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates an empty ledger persisted through store.
func NewLedger(store port.SnapshotStore, opts ...Option) *Ledger {
	l := &Ledger{
		items:  make(map[string]domain.Quantity),
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add increases the stock of item by qty. A zero qty is accepted. When log
// is not nil the mutation is appended to it before the ledger changes.
func (l *Ledger) Add(ctx context.Context, item string, qty domain.Quantity, log port.MutationLog) error {
	if err := domain.CheckName(item); err != nil {
		return l.reject("add", err)
	}
	if qty.IsNegative() {
		return l.reject("add", fmt.Errorf("%w: cannot add negative quantity (%s) for item '%s'", domain.ErrInvalidQuantity, qty, item))
	}

	if err := l.record(ctx, log, domain.EventAdded, item, qty); err != nil {
		return l.reject("add", err)
	}

	l.put(item, l.items[item].Add(qty))
	return nil
}

// Remove decreases the stock of item by qty. The item disappears once its
// quantity reaches zero.
func (l *Ledger) Remove(ctx context.Context, item string, qty domain.Quantity, log port.MutationLog) error {
	if err := domain.CheckName(item); err != nil {
		return l.reject("remove", err)
	}
	if !qty.IsPositive() {
		return l.reject("remove", fmt.Errorf("%w: quantity to remove must be positive, got %s", domain.ErrInvalidQuantity, qty))
	}
	current, ok := l.items[item]
	if !ok {
		return l.reject("remove", fmt.Errorf("%w: item '%s' not found in inventory", domain.ErrNotFound, item))
	}
	if current.LessThan(qty) {
		return l.reject("remove", fmt.Errorf("%w: cannot remove %s of '%s', only %s available", domain.ErrInsufficientStock, qty, item, current))
	}

	if err := l.record(ctx, log, domain.EventRemoved, item, qty); err != nil {
		return l.reject("remove", err)
	}

	l.put(item, current.Sub(qty))
	return nil
}

// Quantity returns the stock of item, zero when the item is absent or the
// name is blank.
func (l *Ledger) Quantity(item string) (domain.Quantity, error) {
	if err := domain.CheckName(item); err != nil {
		return domain.Quantity{}, l.reject("get", err)
	}
	return l.items[item], nil
}

// LowStock returns the items whose quantity is strictly below threshold, in
// ledger order.
func (l *Ledger) LowStock(threshold domain.Quantity) ([]string, error) {
	if threshold.IsNegative() {
		return nil, l.reject("low-stock", fmt.Errorf("%w: threshold must be non-negative, got %s", domain.ErrInvalidQuantity, threshold))
	}

	var low []string
	for _, item := range l.order {
		if l.items[item].LessThan(threshold) {
			low = append(low, item)
		}
	}
	return low, nil
}

// Report writes the "Items Report" listing to w.
func (l *Ledger) Report(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Items Report"); err != nil {
		return err
	}
	for _, item := range l.order {
		if _, err := fmt.Fprintf(w, "%s -> %s\n", item, l.items[item]); err != nil {
			return err
		}
	}
	return nil
}

// Items returns a copy of the ledger contents in ledger order.
func (l *Ledger) Items() domain.Snapshot {
	snap := make(domain.Snapshot, 0, len(l.order))
	for _, item := range l.order {
		snap = append(snap, domain.Entry{Item: item, Quantity: l.items[item]})
	}
	return snap
}

func (l *Ledger) Len() int {
	return len(l.order)
}

// Load replaces the whole ledger with the contents of path. On any failure
// the ledger is left untouched.
func (l *Ledger) Load(ctx context.Context, path string) error {
	if domain.IsBlank(path) {
		return l.reject("load", badPath("load", path))
	}

	snap, err := l.store.Read(ctx, path)
	if err != nil {
		return l.reject("load", err)
	}
	if err := snap.Validate(); err != nil {
		return l.reject("load", &domain.PersistError{Op: "load", Path: path, Kind: domain.KindSchemaViolation, Err: err})
	}

	items := make(map[string]domain.Quantity, len(snap))
	order := make([]string, 0, len(snap))
	for _, e := range snap {
		if !e.Quantity.IsPositive() {
			continue
		}
		items[e.Item] = e.Quantity
		order = append(order, e.Item)
	}
	l.items, l.order = items, order

	l.publish(ctx)
	l.logger.Debug("ledger loaded", "path", path, "items", len(order))
	return nil
}

// Save overwrites path with the whole ledger.
func (l *Ledger) Save(ctx context.Context, path string) error {
	if domain.IsBlank(path) {
		return l.reject("save", badPath("save", path))
	}
	if err := l.store.Write(ctx, path, l.Items()); err != nil {
		return l.reject("save", err)
	}
	l.publish(ctx)
	l.logger.Debug("ledger saved", "path", path, "items", len(l.order))
	return nil
}

func (l *Ledger) record(ctx context.Context, log port.MutationLog, kind domain.EventKind, item string, qty domain.Quantity) error {
	if log == nil {
		return nil
	}
	event := domain.MutationEvent{
		ID:       l.newID(),
		Kind:     kind,
		Item:     item,
		Quantity: qty,
		At:       l.now(),
	}
	if err := log.Append(ctx, event); err != nil {
		return fmt.Errorf("%w: append mutation log: %w", domain.ErrIOFailure, err)
	}
	return nil
}

// put stores q for item, dropping the item when q is not positive.
func (l *Ledger) put(item string, q domain.Quantity) {
	if !q.IsPositive() {
		delete(l.items, item)
		if i := slices.Index(l.order, item); i >= 0 {
			l.order = slices.Delete(l.order, i, i+1)
		}
		return
	}
	if _, ok := l.items[item]; !ok {
		l.order = append(l.order, item)
	}
	l.items[item] = q
}

// publish replaces the mirror with the current contents. A mirror failure
// never fails the ledger operation.
func (l *Ledger) publish(ctx context.Context) {
	if l.mirror == nil {
		return
	}
	if err := l.mirror.Replace(ctx, l.Items()); err != nil {
		l.logger.Warn("stock mirror replace failed", "err", err)
	}
}

func (l *Ledger) reject(op string, err error) error {
	l.logger.Warn("ledger operation rejected", "op", op, "err", err)
	return err
}

func badPath(op, path string) error {
	return &domain.PersistError{Op: op, Path: path, Kind: domain.KindBadPath, Err: errors.New("file path cannot be empty")}
}
