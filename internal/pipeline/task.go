package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/filter"
)

// ReadFunc loads a file's content. os.ReadFile is used when none is given.
type ReadFunc func(path string) ([]byte, error)

// FileTask represents a file to be evaluated against the filter chain
type FileTask struct {
	Path     string
	Language string // lowercase extension without the dot, e.g. "swift"
}

// NewFileTask creates a task, deriving the language from the extension
func NewFileTask(path string) FileTask {
	return FileTask{Path: path, Language: LanguageOf(path)}
}

// LanguageOf returns the lowercase extension of path without the leading dot
func LanguageOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Execute runs the path filters, reads the file once, then runs the content filters.
// An unreadable file is a *errors.FileError, never a Skip.
func (t FileTask) Execute(ctx context.Context, chain *filter.Chain, read ReadFunc) (Outcome, error) {
	if ok, rejection := chain.AcceptPath(t.Path); !ok {
		return Skip{Path: t.Path, Reason: rejection}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if read == nil {
		read = os.ReadFile
	}
	content, err := read(t.Path)
	if err != nil {
		return nil, declerrors.NewFileError("read", t.Path, err)
	}

	if ok, rejection := chain.AcceptContent(t.Path, content); !ok {
		return Skip{Path: t.Path, Reason: rejection}, nil
	}

	return ShouldProcess{Path: t.Path, Content: content, Digest: xxhash.Sum64(content)}, nil
}
