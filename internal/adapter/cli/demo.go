package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rl1809/stock-ledger/internal/adapter/storage"
	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
)

// RunDemo exercises every ledger operation once against a fresh ledger
// persisted at path, printing results and errors to out.
func RunDemo(ctx context.Context, out io.Writer, path string) error {
	l := service.NewLedger(storage.NewJSONFileStore())
	log := storage.NewMemoryLog()

	report := func(err error) {
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
	add := func(item, qty string) {
		q, err := domain.ParseQuantity(qty)
		if err != nil {
			report(err)
			return
		}
		report(l.Add(ctx, item, q, log))
	}

	add("apple", "10")
	add("banana", "-2")
	add("123", "ten")
	report(l.Remove(ctx, "apple", domain.Q(3), log))
	report(l.Remove(ctx, "orange", domain.Q(1), log))

	apple, err := l.Quantity("apple")
	report(err)
	fmt.Fprintln(out, "Apple stock:", apple)

	low, err := l.LowStock(domain.Q(5))
	report(err)
	fmt.Fprintf(out, "Low items: [%s]\n", strings.Join(low, ", "))

	if err := l.Save(ctx, path); err != nil {
		return err
	}
	if err := l.Load(ctx, path); err != nil {
		return err
	}
	if err := l.Report(out); err != nil {
		return err
	}

	fmt.Fprintln(out, "Mutation log:")
	for _, entry := range log.Entries() {
		fmt.Fprintln(out, " ", entry)
	}
	return nil
}
