// Package logging provides the printf-style Logger used across the
// application, backed by log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is an interface for logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// ParseLevel maps a configuration value to a slog level. Unknown values
// fall back to info.
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

// New returns a Logger writing text records to w at the given level.
func New(w io.Writer, level string) Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &slogLogger{l: slog.New(h)}
}

// FromSlog adapts an existing slog.Logger.
func FromSlog(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

// With returns a Logger that adds the given key/value attributes to every
// record. Loggers not created by this package are returned unchanged.
func With(l Logger, args ...any) Logger {
	if s, ok := l.(*slogLogger); ok {
		return &slogLogger{l: s.l.With(args...)}
	}
	return l
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return discard{}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) log(level slog.Level, msg string, args []interface{}) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	s.l.Log(ctx, level, msg)
}

func (s *slogLogger) Debug(msg string, args ...interface{}) {
	s.log(slog.LevelDebug, msg, args)
}

func (s *slogLogger) Info(msg string, args ...interface{}) {
	s.log(slog.LevelInfo, msg, args)
}

func (s *slogLogger) Warn(msg string, args ...interface{}) {
	s.log(slog.LevelWarn, msg, args)
}

func (s *slogLogger) Error(msg string, args ...interface{}) {
	s.log(slog.LevelError, msg, args)
}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}
