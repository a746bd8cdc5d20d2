package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/myrjola/fitroadmap/internal/errors"
)

// exportGET streams a SQLite file holding the profile, logs, week plans and rewards of the user.
func (app *application) exportGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dir, err := os.MkdirTemp("", "fitroadmap-export-*")
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "create export dir"))
		return
	}
	defer func() {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to remove temporary export dir",
				slog.String("path", dir), errors.SlogError(removeErr))
		}
	}()

	exportPath, err := app.workoutService.ExportUserData(ctx, dir)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	file, err := os.Open(exportPath)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "open export file"))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to close export file",
				slog.String("path", exportPath), errors.SlogError(closeErr))
		}
	}()

	w.Header().Set("Content-Type", "application/x-sqlite3")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(exportPath)))

	if _, err = io.Copy(w, file); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "failed to stream export file to client",
			slog.String("path", exportPath), errors.SlogError(err))
	}
}
