package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const optimizeInterval = time.Hour

// optimize runs the analysis recommended for long-lived connections. See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) optimize(ctx context.Context, initial bool) {
	query := "PRAGMA optimize;"
	if initial {
		query = "PRAGMA optimize = 0x10002;"
	}
	start := time.Now()
	if _, err := db.ReadWrite.ExecContext(ctx, query); err != nil {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database",
			slog.Any("error", fmt.Errorf("optimize database: %w", err)))
		return
	}
	db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database", slog.Duration("duration", time.Since(start)))
}

// startDatabaseOptimizer reruns optimize every hour until ctx is done.
func (db *Database) startDatabaseOptimizer(ctx context.Context) {
	ticker := time.NewTicker(optimizeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.optimize(ctx, false)
		}
	}
}
