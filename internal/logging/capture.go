package logging

import (
	"context"
	"log/slog"
	"sync"
)

// ExitCode is the panic value a capture logger raises in place of exiting.
type ExitCode int

// Entry is one captured message.
type Entry struct {
	Level   Level
	Message string
	Path    string
}

// Capture is a logger for tests. It records every message regardless of the
// minimum level, and Error panics with ExitCode instead of terminating.
type Capture struct {
	*Logger
	sink *captureSink
}

// NewCapture creates a capturing logger.
func NewCapture() *Capture {
	sink := &captureSink{mu: &sync.Mutex{}, entries: new([]Entry)}
	l := NewWithHandler(sink, WithExitFunc(func(code int) {
		panic(ExitCode(code))
	}))
	return &Capture{Logger: l, sink: sink}
}

// Messages returns the captured message texts in the order they were logged
func (c *Capture) Messages() []string {
	entries := c.Entries()
	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}

// Entries returns a copy of all captured entries
func (c *Capture) Entries() []Entry {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	return append([]Entry(nil), (*c.sink.entries)...)
}

// Reset discards captured entries
func (c *Capture) Reset() {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	*c.sink.entries = nil
}

type captureSink struct {
	mu      *sync.Mutex
	entries *[]Entry
	path    string
}

func (s *captureSink) Enabled(context.Context, slog.Level) bool {
	return true
}

func (s *captureSink) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: fromSlog(r.Level), Message: r.Message, Path: s.path}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == PathKey {
			e.Path = a.Value.String()
			return false
		}
		return true
	})

	s.mu.Lock()
	*s.entries = append(*s.entries, e)
	s.mu.Unlock()
	return nil
}

func (s *captureSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *s
	for _, a := range attrs {
		if a.Key == PathKey {
			clone.path = a.Value.String()
		}
	}
	return &clone
}

func (s *captureSink) WithGroup(string) slog.Handler {
	return s
}
