// Package logging provides structured logger construction for Crewdeck
// services. Production environments log JSON to stdout; everything else
// gets human-readable text at debug level.
package logging

import (
	"log/slog"
	"os"
)

// NewLogger creates a structured logger for the given environment.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}
