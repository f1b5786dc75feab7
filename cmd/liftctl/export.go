package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/myrjola/liftplan/internal/sqlite"
	"github.com/spf13/cobra"
)

func newExportCmd(logger *slog.Logger) *cobra.Command {
	var (
		dbURL  string
		userID int
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy everything a user owns into a standalone SQLite file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			if userID <= 0 {
				return fmt.Errorf("user id must be positive, got %d", userID)
			}
			if err = os.MkdirAll(outDir, 0o750); err != nil { //nolint:mnd // rwxr-x---
				return fmt.Errorf("create output directory: %w", err)
			}
			db, err := sqlite.NewDatabase(ctx, dbURL, logger)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() {
				err = errors.Join(err, db.Close())
			}()
			path, err := db.ExportUser(ctx, userID, outDir)
			if err != nil {
				return fmt.Errorf("export user %d: %w", userID, err)
			}
			logger.LogAttrs(ctx, slog.LevelInfo, "exported user", slog.Int("user_id", userID),
				slog.String("path", path))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbURL, "db", "./liftplan.sqlite3", "path to the SQLite database")
	cmd.Flags().IntVar(&userID, "user", 0, "id of the user to export")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the export into")
	return cmd
}
