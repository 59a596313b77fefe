// Package logging builds the process-wide structured logger. Both binaries
// log JSON to stderr; stdout stays free for report output and tooling.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a JSON logger tagged with the service name. The
// level string accepts the slog spellings plus "warning"; anything
// unrecognized falls back to info.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	normalized := strings.TrimSpace(level)
	if strings.EqualFold(normalized, "warning") {
		normalized = "warn"
	}
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(normalized)); err != nil {
		return slog.LevelInfo
	}
	return parsed
}
