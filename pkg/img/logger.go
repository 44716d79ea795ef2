package img

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with archive-specific helpers.
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

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogOpen logs the outcome of decoding an archive.
func (l *Logger) LogOpen(size int64, st Stats, err error) {
	if err != nil {
		l.Error("archive decode failed",
			"size", size,
			"error", err,
		)
		return
	}
	l.Info("archive decoded",
		"size", size,
		"levels", st.Levels,
		"subdivisions", st.Subdivisions,
		"indexed", st.Indexed,
		"polygon_types", st.PolygonTypes,
		"point_types", st.PointTypes,
	)
	l.Debug("block cache",
		"hits", st.BlockHits,
		"misses", st.BlockMisses,
	)
}

// LogSkippedEntries logs extended type table entries that were skipped.
func (l *Logger) LogSkippedEntries(table string, skipped []error) {
	if len(skipped) == 0 {
		return
	}
	l.Warn("extended type table partially decoded",
		"table", table,
		"skipped", len(skipped),
		"first", skipped[0],
	)
}

// LogQuery logs a subdivision query.
func (l *Logger) LogQuery(rect Rect, bits uint8, levels, found int) {
	l.Debug("subdivision query",
		"rect", rect.String(),
		"bits", bits,
		"levels", levels,
		"results", found,
	)
}
