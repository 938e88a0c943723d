// Package logger constructs the root slog logger shared by all services.
package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. COFFER_LOG_FORMAT=json switches to JSON
// output for log shippers; the default text handler is friendlier locally.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("COFFER_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if os.Getenv("COFFER_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
