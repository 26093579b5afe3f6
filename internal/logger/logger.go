// Package logger builds the application's structured JSON logger.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a configured level name to a slog level; unknown names fall back to info.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// New returns a JSON logger writing to w at the given level.
func New(level string, w io.Writer) *slog.Logger {
	lvl, ok := ParseLevel(level)
	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	if !ok {
		log.Warn("invalid log level configured, using info", "configured_level", level)
	}
	return log
}

// Setup builds the logger and installs it as the slog default.
func Setup(level string, w io.Writer) *slog.Logger {
	log := New(level, w)
	slog.SetDefault(log)
	return log
}

// Discard is a logger for tests and tools that must stay quiet.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
