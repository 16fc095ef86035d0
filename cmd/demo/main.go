package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/rl1809/stock-ledger/internal/adapter/cli"
	"github.com/rl1809/stock-ledger/internal/core/domain"
)

func main() {
	file := pflag.String("file", domain.DefaultFile, "ledger file written by the demonstration")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := cli.RunDemo(context.Background(), os.Stdout, *file); err != nil {
		logger.Error("demo failed", "err", err)
		os.Exit(1)
	}
}
