// Command liftctl inspects the training catalog and exports user data from a liftplan database.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/myrjola/liftplan/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, nil)))

	err := newRootCmd(logger).ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "liftctl failed", slog.Any("error", err))
		os.Exit(1)
	}
}
