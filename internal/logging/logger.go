// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/tvlabel/internal/model"
)

// New creates a *slog.Logger on stderr from cfg and installs it as the
// default logger.
//
// Format "json" writes structured records for batch runs; "text" writes
// human-readable records with source positions. Level is debug, info, warn or
// error (case-insensitive) and defaults to info.
func New(cfg model.LogConfig) *slog.Logger {
	logger := NewWriter(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

// NewWriter builds the logger on w without touching the default logger.
func NewWriter(w io.Writer, cfg model.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text") && ParseLevel(cfg.Level) == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog level.
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
