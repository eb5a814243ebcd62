package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a logging severity. Levels are ordered Debug < Info < Warning < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// DefaultLevel is the minimum output level of a freshly created logger
const DefaultLevel = LevelWarning

var levelNames = [...]string{"debug", "info", "warning", "error"}

// Emoticons prefix messages printed without a file path
var levelEmoticons = [...]string{"🐞", "📋", "❗️", "💩"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Emoticon returns the marker printed in front of path-less messages
func (l Level) Emoticon() string {
	if l < LevelDebug || l > LevelError {
		return ""
	}
	return levelEmoticons[l]
}

// ParseLevel converts a level name ("debug", "info", "warning", "error") to a Level.
// "warn" is accepted as an alias for "warning".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return 0, fmt.Errorf("unknown logging level %q", s)
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func fromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarning
	default:
		return LevelError
	}
}
