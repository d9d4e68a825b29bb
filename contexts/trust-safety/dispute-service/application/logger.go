package application

import (
	"io"
	"log/slog"
)

// ResolveLogger returns the provided logger or a no-op fallback so use
// cases never need nil checks before logging.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
