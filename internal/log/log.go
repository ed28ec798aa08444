// Package log builds the slog loggers used across askdocs.
//
// Loggers are passed through constructors, never pulled from a global.
// Components scope theirs with With:
//
//	pipeline := ingest.NewPipeline(store, embedder, minChars, logger.With("component", "ingest"))
//
// Tests use NewNop, or NewWithWriter to capture output.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger aliases *slog.Logger so callers stay compatible with the whole
// slog ecosystem.
type Logger = *slog.Logger

type Config struct {
	Level     slog.Level // minimum level, zero value is Info
	JSON      bool       // JSON handler instead of text
	AddSource bool       // annotate records with file:line
}

// New writes to stderr with the given configuration.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a new logger that writes to the specified writer.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewNop discards everything. Test use only.
func NewNop() Logger {
	return slog.New(slog.DiscardHandler)
}
