package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON output so log aggregation doesn't
// need a custom parser.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
