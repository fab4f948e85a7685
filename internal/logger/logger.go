// Package logger provides a simple logging interface for nevconsole components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation. The production
// implementation writes through zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "NEVC_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// zeroLogger implements Logger on top of a zerolog.Logger.
type zeroLogger struct {
	zl zerolog.Logger
}

// New creates a logger writing to w. The component name is attached to every
// entry (e.g., "feed" or "media"). Debug entries are dropped unless debug is
// true or DebugEnv is set.
func New(w io.Writer, component string, debug bool) Logger {
	level := zerolog.InfoLevel
	if debug || os.Getenv(DebugEnv) != "" {
		level = zerolog.DebugLevel
	}
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if component != "" {
		ctx = ctx.Str("component", component)
	}
	return &zeroLogger{zl: ctx.Logger()}
}

// NewEnvLogger creates a human-readable stderr logger that respects DebugEnv.
func NewEnvLogger(component string) Logger {
	return NewConsoleLogger(os.Stderr, component, false)
}

// NewConsoleLogger creates a human-readable logger writing to w.
func NewConsoleLogger(w io.Writer, component string, debug bool) Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return New(cw, component, debug)
}

// NewFileLogger creates a JSON-lines logger appending to path. Used while the
// dashboard owns the terminal. The returned closer closes the file.
func NewFileLogger(path, component string, debug bool) (Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, component, debug), f, nil
}

// With returns a logger for a sub-component. Loggers that are not backed by
// zerolog are returned unchanged.
func With(l Logger, component string) Logger {
	zl, ok := l.(*zeroLogger)
	if !ok {
		return l
	}
	return &zeroLogger{zl: zl.zl.With().Str("component", component).Logger()}
}

// WithLevel returns l filtered at level ("debug", "info", "warn" or "error").
// DebugEnv still forces debug output. Unknown levels leave l unchanged.
func WithLevel(l Logger, level string) Logger {
	zl, ok := l.(*zeroLogger)
	if !ok {
		return l
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return l
	}
	if os.Getenv(DebugEnv) != "" {
		lvl = zerolog.DebugLevel
	}
	return &zeroLogger{zl: zl.zl.Level(lvl)}
}

func (l *zeroLogger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *zeroLogger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

func (l *zeroLogger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *zeroLogger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for use from the managers' background goroutines.
type BufferLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// Messages returns a copy of the captured messages.
func (l *BufferLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages() {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewEnvLogger("")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
