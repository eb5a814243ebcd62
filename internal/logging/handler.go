package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// PathKey is the attribute key that switches output to the compiler-style format
const PathKey = "path"

// Path attaches the file a message applies to. Messages carrying a path are printed as
// "path:1:1: level: message" so build systems can parse them.
func Path(p string) slog.Attr {
	return slog.String(PathKey, p)
}

// textHandler is the slog.Handler behind printing loggers.
type textHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
	group string
}

func newTextHandler(w io.Writer, level slog.Leveler) *textHandler {
	return &textHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *textHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	level := fromSlog(r.Level)

	var path string
	var extra strings.Builder
	collect := func(a slog.Attr) bool {
		if a.Key == PathKey {
			path = a.Value.String()
			return true
		}
		if a.Equal(slog.Attr{}) {
			return true
		}
		fmt.Fprintf(&extra, " %s=%s", a.Key, a.Value.String())
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		return collect(h.qualify(a))
	})

	var line string
	if path != "" {
		line = fmt.Sprintf("%s:1:1: %s: %s%s\n", path, level, r.Message, extra.String())
	} else {
		line = fmt.Sprintf("%s: %s %s%s\n", level, level.Emoticon(), r.Message, extra.String())
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line)
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, h.qualify(a))
	}
	return &clone
}

// qualify prefixes grouped keys; the path attribute is only honoured outside groups.
func (h *textHandler) qualify(a slog.Attr) slog.Attr {
	if h.group == "" {
		return a
	}
	a.Key = h.group + "." + a.Key
	return a
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}
