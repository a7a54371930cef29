// Package logging builds the slog handler behind the clog loggers used by
// the httpreq command.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Log formats.
const (
	FormatJSON = "json" // default
	FormatText = "text"
)

// NewHandler returns a handler writing to w in the given format at the given
// level. Unknown formats fall back to JSON, unknown levels to info.
func NewHandler(format, level string, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	switch strings.ToLower(format) {
	case FormatText:
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
