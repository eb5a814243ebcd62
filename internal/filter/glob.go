package filter

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
)

// GlobPathFilter rejects paths matching any exclusion glob and, when Include is set,
// paths matching none of the include globs. Patterns use doublestar syntax and are
// matched against the slash-separated path relative to Root.
type GlobPathFilter struct {
	Root    string
	Include []string
	Exclude []string
}

// NewGlobPathFilter validates the patterns and creates the filter.
func NewGlobPathFilter(root string, include, exclude []string) (*GlobPathFilter, error) {
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, declerrors.NewConfigError("include", p, doublestar.ErrBadPattern)
		}
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, declerrors.NewConfigError("exclude", p, doublestar.ErrBadPattern)
		}
	}
	return &GlobPathFilter{Root: root, Include: include, Exclude: exclude}, nil
}

func (f *GlobPathFilter) Name() string { return "glob" }

// AcceptPath implements PathFilter
func (f *GlobPathFilter) AcceptPath(path string) bool {
	rel := f.relative(path)
	for _, pattern := range f.Exclude {
		if matchGlob(pattern, rel) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if matchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

// ExcludesDir reports whether everything below dir is excluded, which lets a directory
// walk prune it.
func (f *GlobPathFilter) ExcludesDir(dir string) bool {
	rel := f.relative(dir)
	if rel == "." || rel == "" {
		return false
	}
	for _, pattern := range f.Exclude {
		if matchGlob(pattern, rel) || matchGlob(pattern, rel+"/") {
			return true
		}
		// "vendor/**" style patterns also cover the directory itself
		if base, ok := strings.CutSuffix(pattern, "/**"); ok && matchGlob(base, rel) {
			return true
		}
	}
	return false
}

func (f *GlobPathFilter) relative(path string) string {
	if f.Root != "" {
		if rel, err := filepath.Rel(f.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

func matchGlob(pattern, path string) bool {
	matched, err := doublestar.Match(pattern, path)
	return err == nil && matched
}

