package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/fitroadmap/internal/logging"
)

// NewLogger creates a debug level logger writing to logSink such as testhelpers.Writer.
func NewLogger(logSink io.Writer) *slog.Logger {
	return logging.NewLogger(logSink, slog.LevelDebug, nil)
}
