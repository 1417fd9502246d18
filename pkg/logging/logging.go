// Package logging provides the structured, subsystem-tagged logger used
// across the control plane. It is a thin wrapper around log/slog: every
// call names the component that produced it (e.g. "Registry", "Migration")
// so operators can filter a single process's logs by component.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a LOG_LEVEL value (case-insensitive) into a Level,
// defaulting to LevelInfo for anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var defaultLogger *slog.Logger

// Init initializes the package-level logger. Call once from main.
func Init(level Level, output io.Writer) {
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.slogLevel()})
	defaultLogger = slog.New(handler)
}

func ensure() *slog.Logger {
	if defaultLogger == nil {
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return defaultLogger
}

func logf(level slog.Level, subsystem string, err error, messageFmt string, args ...interface{}) {
	logger := ensure()
	if !logger.Enabled(context.Background(), level) {
		return
	}
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}
	attrs := []slog.Attr{slog.String("subsystem", subsystem), slog.Time("ts", time.Now())}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Debug logs a debug-level message tagged with subsystem.
func Debug(subsystem, messageFmt string, args ...interface{}) {
	logf(slog.LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an info-level message tagged with subsystem.
func Info(subsystem, messageFmt string, args ...interface{}) {
	logf(slog.LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning tagged with subsystem.
func Warn(subsystem, messageFmt string, args ...interface{}) {
	logf(slog.LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error tagged with subsystem, attaching err as a structured field.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logf(slog.LevelError, subsystem, err, messageFmt, args...)
}
