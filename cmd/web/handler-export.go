package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/myrjola/liftplan/internal/contexthelpers"
)

// exportGET streams a standalone SQLite database containing only the data of the user.
func (app *application) exportGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	exportDir, err := os.MkdirTemp(app.exportDir, "liftplan-export-")
	if err != nil {
		app.serverError(w, r, fmt.Errorf("create export dir: %w", err))
		return
	}
	defer func() {
		if removeErr := os.RemoveAll(exportDir); removeErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to remove temporary export dir",
				slog.String("path", exportDir), slog.Any("error", removeErr))
		}
	}()

	exportPath, err := app.db.ExportUser(ctx, contexthelpers.AuthenticatedUserID(ctx), exportDir)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("export user data: %w", err))
		return
	}

	file, err := os.Open(exportPath)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("open export file: %w", err))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to close export file",
				slog.String("path", exportPath), slog.Any("error", closeErr))
		}
	}()

	w.Header().Set("Content-Type", "application/x-sqlite3")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(exportPath)))
	if _, err = io.Copy(w, file); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "failed to stream export file to client",
			slog.String("path", exportPath), slog.Any("error", err))
	}
}
