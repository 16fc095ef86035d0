package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/rl1809/stock-ledger/internal/adapter/storage"
	"github.com/rl1809/stock-ledger/internal/config"
	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
	"github.com/rl1809/stock-ledger/internal/port"
)

// app holds everything a command needs for one invocation.
//
// Mutations are recorded in buffer and only reach the external sinks after
// the ledger file has been saved.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	ledger  *service.Ledger
	buffer  *storage.MemoryLog
	sinks   []port.MutationLog
	cache   *storage.RedisAdapter
	journal *storage.MySQLJournal
	closers []func() error
}

// newApp wires the ledger, its mirror and its mutation log sinks from cfg,
// then loads the ledger file. A missing file yields an empty ledger.
func newApp(ctx context.Context, cfg *config.Config, stderr io.Writer) (*app, error) {
	level, _ := cfg.Level()
	a := &app{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		buffer: storage.NewMemoryLog(),
	}

	opts := []service.Option{service.WithLogger(a.logger)}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		a.cache = storage.NewRedisAdapter(rdb, cfg.Redis.StockPrefix, cfg.Redis.LogKey)
		opts = append(opts, service.WithMirror(a.cache))
		a.sinks = append(a.sinks, a.cache)
		a.logger.Debug("connected to redis", "addr", cfg.Redis.Addr)
	}

	if cfg.MySQL.DSN != "" {
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to open mysql: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to ping mysql: %w", err)
		}
		a.journal = storage.NewMySQLJournal(db)
		if err := a.journal.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, err
		}
		a.sinks = append(a.sinks, a.journal)
		a.logger.Debug("connected to mysql")
	}

	a.ledger = service.NewLedger(storage.NewJSONFileStore(), opts...)

	if err := a.ledger.Load(ctx, cfg.File); err != nil {
		if kind, _ := domain.KindOf(err); kind != domain.KindFileNotFound {
			a.close()
			return nil, err
		}
		a.logger.Warn("ledger file does not exist, starting with an empty ledger", "file", cfg.File)
	}
	return a, nil
}

// commit saves the ledger file and then hands the buffered mutations to
// the external sinks. Nothing leaves the process when the save fails.
func (a *app) commit(ctx context.Context) error {
	if err := a.ledger.Save(ctx, a.cfg.File); err != nil {
		return err
	}
	if err := a.buffer.Flush(ctx, a.sinks...); err != nil {
		a.logger.Warn("mutation journal incomplete", "err", err)
	}
	return nil
}

func (a *app) close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}

// withApp runs fn with a freshly wired app and releases it afterwards.
func withApp(cfgFile *string, fn func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(*cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), cmd, args, a)
	}
}
