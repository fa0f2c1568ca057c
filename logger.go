package columnar

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger wraps slog.Logger with columnar-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithKernel adds a kernel field to the logger.
func (l *Logger) WithKernel(kernel string) *Logger {
	return &Logger{
		Logger: l.Logger.With("kernel", kernel),
	}
}

// LogKernel logs a kernel invocation.
func (l *Logger) LogKernel(ctx context.Context, kernel string, elements int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "kernel failed",
			"kernel", kernel,
			"elements", elements,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "kernel completed",
			"kernel", kernel,
			"elements", elements,
		)
	}
}

var (
	noopLogger    = NoopLogger()
	defaultLogger atomic.Pointer[Logger]
)

func init() {
	defaultLogger.Store(noopLogger)
}

// SetLogger replaces the logger used by the package-level functions.
// A nil logger disables logging.
func SetLogger(l *Logger) {
	if l == nil {
		l = noopLogger
	}
	defaultLogger.Store(l)
}

// GetLogger returns the logger used by the package-level functions.
func GetLogger() *Logger {
	return defaultLogger.Load()
}
