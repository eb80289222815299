// Package debug provides the engine's process-wide structured logger built on log/slog.
// Logging is off until Init or Configure is called.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// logger is the global logger instance
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	// enabled indicates if debug logging is enabled
	enabled bool
	// mu protects the logger and enabled flag
	mu sync.RWMutex
)

// Options configures the logger.
type Options struct {
	// Writer receives log records; defaults to os.Stderr.
	Writer io.Writer
	// Level is the minimum level written.
	Level slog.Level
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
}

// Init enables debug-level logging to os.Stderr, or discards everything when enable is false.
func Init(enable bool) {
	if !enable {
		mu.Lock()
		defer mu.Unlock()
		enabled = false
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	Configure(Options{Level: slog.LevelDebug})
}

// Configure installs a logger built from opts.
func Configure(opts Options) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	mu.Lock()
	defer mu.Unlock()
	enabled = opts.Level <= slog.LevelDebug
	logger = slog.New(handler)
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
