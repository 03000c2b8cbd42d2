package logging

import (
	"context"
	"io"
	"log/slog"
)

// ConsoleLogger implements Logger on top of a log/slog handler
type ConsoleLogger struct {
	logger *slog.Logger
}

// NewConsoleLogger creates a logger writing text or JSON records to w
func NewConsoleLogger(w io.Writer, format Format, level Level) *ConsoleLogger {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &ConsoleLogger{logger: slog.New(handler)}
}

// Debug logs a debug message
func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs(fields)...)
}

// Info logs an info message
func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs(fields)...)
}

// Warn logs a warning message
func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs(fields)...)
}

// Error logs an error message
func (l *ConsoleLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	a := attrs(fields)
	if err != nil {
		a = append(a, slog.String("error", err.Error()))
	}
	l.logger.LogAttrs(ctx, slog.LevelError, msg, a...)
}

// WithFields returns a logger with additional fields
func (l *ConsoleLogger) WithFields(fields Fields) Logger {
	args := make([]any, 0, len(fields))
	for _, a := range attrs(fields) {
		args = append(args, a)
	}
	return &ConsoleLogger{logger: l.logger.With(args...)}
}

// Close does nothing; the writer belongs to the caller
func (l *ConsoleLogger) Close() error {
	return nil
}

func slogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func attrs(fields Fields) []slog.Attr {
	out := make([]slog.Attr, 0, len(fields))
	for _, k := range sortedKeys(fields) {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}
