// Package logging defines a minimal structured-logging interface used across
// the project, with adapters for log/slog and zap.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "session joined", "session_id", id)
type Logger interface {
	// Debug logs protocol-level detail (individual polls, API calls).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New builds a Logger writing to w. FormatJSON selects zap's production
// encoder, FormatText a slog text handler.
func New(format, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return NewZapLogger(w, level)
	case FormatText, "":
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
