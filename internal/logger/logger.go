// Package logger provides the structured logger shared by the service.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with a few domain helpers.
type Logger struct {
	*slog.Logger
}

// New creates a logger for the given environment. Development gets a debug
// level text handler, everything else JSON at info level.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(env string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// UpstreamFailure logs a failed call to a third-party provider.
func (l *Logger) UpstreamFailure(upstream string, status int, message string, err error) {
	attrs := []any{
		slog.String("upstream", upstream),
		slog.Int("status", status),
	}
	if message != "" {
		attrs = append(attrs, slog.String("upstream_message", message))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.Error("upstream_failure", attrs...)
}

// CacheError logs a failed cache read or write.
func (l *Logger) CacheError(operation, key string, err error) {
	l.Warn("cache_error",
		slog.String("operation", operation),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}
