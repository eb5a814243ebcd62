// Package logging provides the leveled, process-wide logger shared by the scanner's
// components. Output goes through log/slog; components receive a *Logger handle.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Logger is a leveled logger whose minimum output level can be changed at runtime
// from any goroutine.
type Logger struct {
	handler slog.Handler
	level   *slog.LevelVar
	exit    func(code int)
}

// Option configures a Logger.
type Option func(*Logger)

// WithExitFunc replaces os.Exit as the terminator used by Error.
func WithExitFunc(exit func(code int)) Option {
	return func(l *Logger) {
		l.exit = exit
	}
}

// WithLevel sets the initial minimum output level.
func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level.Set(level.slogLevel())
	}
}

// New creates a logger printing to w.
func New(w io.Writer, opts ...Option) *Logger {
	l := &Logger{
		level: new(slog.LevelVar),
		exit:  os.Exit,
	}
	l.level.Set(DefaultLevel.slogLevel())
	l.handler = newTextHandler(w, l.level)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewWithHandler creates a logger backed by an arbitrary slog handler.
// The handler decides for itself whether the minimum level applies.
func NewWithHandler(h slog.Handler, opts ...Option) *Logger {
	l := &Logger{
		handler: h,
		level:   new(slog.LevelVar),
		exit:    os.Exit,
	}
	l.level.Set(DefaultLevel.slogLevel())
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetMinLevel changes the minimum level a message needs to be printed
func (l *Logger) SetMinLevel(level Level) {
	l.level.Set(level.slogLevel())
}

// MinLevel returns the current minimum output level
func (l *Logger) MinLevel() Level {
	return fromSlog(l.level.Level())
}

// Enabled reports whether a message at level would be emitted
func (l *Logger) Enabled(level Level) bool {
	return l.handler.Enabled(context.Background(), level.slogLevel())
}

// Slog exposes the logger as a *slog.Logger for libraries that expect one
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.handler)
}

// With returns a logger that adds attrs to every message.
// The returned logger shares the minimum level and exit function.
func (l *Logger) With(args ...any) *Logger {
	clone := *l
	clone.handler = slog.New(l.handler).With(args...).Handler()
	return &clone
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, msg, args...)
}

func (l *Logger) Warning(msg string, args ...any) {
	l.log(LevelWarning, msg, args...)
}

// Error logs msg and terminates the process with status 1.
// Only use it for conditions that end the whole run.
func (l *Logger) Error(msg string, args ...any) {
	l.ErrorCode(1, msg, args...)
}

// ErrorCode is Error with an explicit exit status
func (l *Logger) ErrorCode(code int, msg string, args ...any) {
	l.log(LevelError, msg, args...)
	l.exit(code)
}

func (l *Logger) log(level Level, msg string, args ...any) {
	slog.New(l.handler).Log(context.Background(), level.slogLevel(), msg, args...)
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Init configures the process-wide logger. Later calls replace it.
func Init(w io.Writer, level Level, opts ...Option) *Logger {
	l := New(w, append([]Option{WithLevel(level)}, opts...)...)
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	return l
}

// Default returns the process-wide logger, creating a stderr logger on first use.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(os.Stderr)
	}
	return defaultLogger
}

// OrDefault returns l, or the process-wide logger when l is nil
func OrDefault(l *Logger) *Logger {
	if l == nil {
		return Default()
	}
	return l
}
