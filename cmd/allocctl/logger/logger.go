// Package logger holds the process-wide slog logger for allocctl.
package logger

import (
	"log/slog"
	"os"
)

// L is the global logger instance. It discards all output until Init is
// called with a destination.
var L = discard()

// Options configures the logger initialization.
type Options struct {
	// Path is the log file to append to. Empty discards all output; "-"
	// writes text records to stderr.
	Path string

	// Level is the minimum level recorded. Default: LevelInfo
	Level slog.Level
}

// Init configures logging and returns a function that closes the log file.
// Call from the root command before any log calls.
func Init(opts Options) (func() error, error) {
	noop := func() error { return nil }
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	switch opts.Path {
	case "":
		L = discard()
		return noop, nil
	case "-":
		L = slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
		return noop, nil
	}

	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return noop, err
	}
	L = slog.New(slog.NewJSONHandler(f, handlerOpts))
	return func() error {
		L = discard()
		return f.Close()
	}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }
