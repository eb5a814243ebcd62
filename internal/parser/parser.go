// Package parser provides the front ends that turn file content into raw trees.
package parser

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/standardbeagle/declscan/internal/ast"
)

// Parser turns the content of one file into a raw tree. Implementations must be safe
// for concurrent use.
type Parser interface {
	Name() string
	Parse(ctx context.Context, path string, content []byte) (*ast.RawNode, error)
}

// Registry selects a parser by file extension.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register binds p to the given extensions, replacing earlier bindings
func (r *Registry) Register(p Parser, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extensions {
		r.parsers[normalizeExt(ext)] = p
	}
}

// Lookup returns the parser for path's extension
func (r *Registry) Lookup(path string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[normalizeExt(filepath.Ext(path))]
	return p, ok
}

// Extensions lists the registered extensions in sorted order
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

func (r *Registry) Name() string { return "registry" }

// Parse dispatches to the parser registered for path, so a Registry can stand in
// wherever a single Parser is expected.
func (r *Registry) Parse(ctx context.Context, path string, content []byte) (*ast.RawNode, error) {
	p, ok := r.Lookup(path)
	if !ok {
		return nil, &UnsupportedError{Path: path}
	}
	return p.Parse(ctx, path, content)
}

// UnsupportedError is returned for files no registered parser handles.
type UnsupportedError struct {
	Path string
}

func (e *UnsupportedError) Error() string {
	return "no parser registered for " + e.Path
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// DefaultRegistry registers the SourceKitten front end for Swift and the tree-sitter
// dialects for Java, Go and Python. workers bounds the native parsers each dialect keeps
// idle; values below 1 use GOMAXPROCS.
func DefaultRegistry(sourceKit *SourceKitParser, workers int) *Registry {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	r := NewRegistry()
	if sourceKit != nil {
		r.Register(sourceKit, ".swift")
	}
	r.Register(NewTreeSitterParserSize(Java, workers), ".java")
	r.Register(NewTreeSitterParserSize(Go, workers), ".go")
	r.Register(NewTreeSitterParserSize(Python, workers), ".py", ".pyi")
	return r
}

// Close closes every registered parser that holds native resources
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[Parser]bool)
	var errs []error
	for _, p := range r.parsers {
		if seen[p] {
			continue
		}
		seen[p] = true
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
