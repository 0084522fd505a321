package pact

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with consistent field names for trace analysis.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs to stderr.
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
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithTrace adds the trace name to every record.
func (l *Logger) WithTrace(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("trace", name),
	}
}

// LogParse logs the outcome of reading an input.
func (l *Logger) LogParse(ctx context.Context, name string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "parse failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "parse completed",
			"name", name,
			"records", records,
		)
	}
}

// LogClusters logs cluster inference.
func (l *Logger) LogClusters(ctx context.Context, found, kept int, gap uint64) {
	if kept < found {
		l.InfoContext(ctx, "clusters filtered",
			"found", found,
			"kept", kept,
			"gap_bytes", gap,
		)
	} else {
		l.DebugContext(ctx, "clusters inferred",
			"found", found,
			"gap_bytes", gap,
		)
	}
}

// LogRender logs one rendered chart.
func (l *Logger) LogRender(ctx context.Context, idx int, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "render failed",
			"cluster", idx,
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "render completed",
			"cluster", idx,
			"name", name,
		)
	}
}

// LogUpload logs a write to the output store.
func (l *Logger) LogUpload(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "upload failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "upload completed",
			"name", name,
			"bytes", bytes,
		)
	}
}

// LogCatalog logs a catalog write.
func (l *Logger) LogCatalog(ctx context.Context, traceURI string, version uint64, err error) {
	if err != nil {
		l.WarnContext(ctx, "catalog record failed",
			"trace", traceURI,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run recorded",
			"trace", traceURI,
			"version", version,
		)
	}
}
