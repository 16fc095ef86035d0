// Package cli implements the ledger command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rl1809/stock-ledger/internal/adapter/storage"
	"github.com/rl1809/stock-ledger/internal/config"
	"github.com/rl1809/stock-ledger/internal/core/domain"
)

var (
	errNoRedis   = errors.New("no Redis mirror configured (set --redis-addr)")
	errNoJournal = errors.New("no mutation journal configured (set --mysql-dsn or --redis-addr)")
)

// NewRootCmd creates the ledger command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "ledger",
		Short:         "Track stock quantities in a JSON ledger file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ledger.yaml when present)")
	pf.String("file", domain.DefaultFile, "ledger file")
	pf.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.String("redis-addr", "", "mirror stock and mutation log to this Redis server")
	pf.String("mysql-dsn", "", "journal mutations to this MySQL database")

	root.AddCommand(
		newAddCmd(&cfgFile),
		newRemoveCmd(&cfgFile),
		newGetCmd(&cfgFile),
		newLowCmd(&cfgFile),
		newReportCmd(&cfgFile),
		newHistoryCmd(&cfgFile),
		newWatchCmd(&cfgFile),
		newDemoCmd(&cfgFile),
	)
	return root
}

func newAddCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <item> <quantity>",
		Short: "Add stock for an item",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(cfgFile, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			qty, err := domain.ParseQuantity(args[1])
			if err != nil {
				return err
			}
			if err := a.ledger.Add(ctx, args[0], qty, a.buffer); err != nil {
				return err
			}
			if err := a.commit(ctx); err != nil {
				return err
			}
			q, _ := a.ledger.Quantity(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], q)
			return nil
		}),
	}
}

func newRemoveCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item> <quantity>",
		Short: "Remove stock for an item",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(cfgFile, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			qty, err := domain.ParseQuantity(args[1])
			if err != nil {
				return err
			}
			if err := a.ledger.Remove(ctx, args[0], qty, a.buffer); err != nil {
				return err
			}
			if err := a.commit(ctx); err != nil {
				return err
			}
			q, _ := a.ledger.Quantity(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], q)
			return nil
		}),
	}
}

func newGetCmd(cfgFile *string) *cobra.Command {
	var fromMirror bool
	cmd := &cobra.Command{
		Use:   "get <item>",
		Short: "Print the quantity held for an item",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(cfgFile, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			q, err := a.ledger.Quantity(args[0])
			if err != nil {
				return err
			}
			if !fromMirror {
				fmt.Fprintln(cmd.OutOrStdout(), q)
				return nil
			}

			if a.cache == nil {
				return errNoRedis
			}
			// An item absent from the mirror reads as zero.
			mirrored, _, err := a.cache.Stock(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (mirror %s)\n", q, mirrored)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&fromMirror, "mirror", false, "also print the quantity held in the Redis mirror")
	return cmd
}

func newLowCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "low",
		Short: "List items below the low-stock threshold",
		Args:  cobra.NoArgs,
		RunE: withApp(cfgFile, func(_ context.Context, cmd *cobra.Command, _ []string, a *app) error {
			threshold, err := a.cfg.Threshold()
			if err != nil {
				return err
			}
			low, err := a.ledger.LowStock(threshold)
			if err != nil {
				return err
			}
			for _, item := range low {
				fmt.Fprintln(cmd.OutOrStdout(), item)
			}
			return nil
		}),
	}
	cmd.Flags().String("threshold", config.DefaultThreshold, "report items strictly below this quantity")
	return cmd
}

func newReportCmd(cfgFile *string) *cobra.Command {
	var asTable bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print every item and its quantity",
		Args:  cobra.NoArgs,
		RunE: withApp(cfgFile, func(_ context.Context, cmd *cobra.Command, _ []string, a *app) error {
			if !asTable {
				return a.ledger.Report(cmd.OutOrStdout())
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetTitle("Items Report")
			t.AppendHeader(table.Row{"Item", "Quantity"})
			for _, e := range a.ledger.Items() {
				t.AppendRow(table.Row{e.Item, e.Quantity.String()})
			}
			t.AppendFooter(table.Row{"Items", a.ledger.Len()})
			t.Render()
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "render the report as a table")
	return cmd
}

func newHistoryCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history <item>",
		Short: "Print the journaled mutations of an item",
		Long: `Print the journaled mutations of an item, oldest first.
The MySQL journal is used when configured, otherwise the Redis log.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(cfgFile, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			if err := domain.CheckName(args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case a.journal != nil:
				events, err := a.journal.Events(ctx, args[0])
				if err != nil {
					return err
				}
				for _, e := range events {
					fmt.Fprintln(out, e)
				}
			case a.cache != nil:
				entries, err := a.cache.Entries(ctx)
				if err != nil {
					return err
				}
				for _, entry := range entries {
					if strings.HasSuffix(entry, " of "+args[0]) {
						fmt.Fprintln(out, entry)
					}
				}
			default:
				return errNoJournal
			}
			return nil
		}),
	}
}

func newWatchCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the ledger file on change and print low-stock items",
		Args:  cobra.NoArgs,
		RunE: withApp(cfgFile, func(ctx context.Context, cmd *cobra.Command, _ []string, a *app) error {
			threshold, err := a.cfg.Threshold()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printLow := func() {
				low, _ := a.ledger.LowStock(threshold)
				fmt.Fprintf(out, "Low items: [%s]\n", strings.Join(low, ", "))
			}

			printLow()
			return storage.WatchFile(ctx, a.cfg.File, func() {
				// A failed reload keeps the previous ledger and is logged by Load.
				if err := a.ledger.Load(ctx, a.cfg.File); err == nil {
					printLow()
				}
			})
		}),
	}
	cmd.Flags().String("threshold", config.DefaultThreshold, "report items strictly below this quantity")
	return cmd
}

func newDemoCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the demonstration sequence against the ledger file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			return RunDemo(cmd.Context(), cmd.OutOrStdout(), cfg.File)
		},
	}
}
