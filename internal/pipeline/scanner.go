package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/standardbeagle/declscan/internal/filter"
	"github.com/standardbeagle/declscan/internal/logging"
)

// Scanner enumerates candidate files below Root in directory order. Directories the
// exclusion globs fully cover are pruned; every other regular file is yielded and left
// to the filter chain.
type Scanner struct {
	Root           string
	Exclude        *filter.GlobPathFilter // nil walks everything
	FollowSymlinks bool
	MaxFileSize    int64 // 0 disables the size check

	logger *logging.Logger
}

// NewScanner creates a scanner; a nil logger uses the process-wide one.
func NewScanner(root string, exclude *filter.GlobPathFilter, logger *logging.Logger) *Scanner {
	return &Scanner{Root: root, Exclude: exclude, logger: logging.OrDefault(logger)}
}

// Paths returns a restartable sequence of file paths. The walk stops when ctx is
// canceled or the consumer stops iterating.
func (s *Scanner) Paths(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		info, err := os.Stat(s.Root)
		if err != nil {
			s.log().Warning(fmt.Sprintf("cannot scan: %v", err), logging.Path(s.Root))
			return
		}
		if !info.IsDir() {
			yield(s.Root)
			return
		}
		// Track visited directories to prevent infinite loops from symlink cycles
		visitedDirs := make(map[string]bool)
		s.walk(ctx, s.Root, visitedDirs, yield)
	}
}

func (s *Scanner) log() *logging.Logger {
	return logging.OrDefault(s.logger)
}

// walk returns false once iteration must stop
func (s *Scanner) walk(ctx context.Context, dir string, visitedDirs map[string]bool, yield func(string) bool) bool {
	if ctx.Err() != nil {
		return false
	}

	realPath, err := filepath.EvalSymlinks(dir)
	if err != nil {
		s.log().Debug("skipping unresolvable directory", logging.Path(dir))
		return true
	}
	if visitedDirs[realPath] {
		s.log().Debug("cycle detected, skipping already visited directory "+realPath, logging.Path(dir))
		return true
	}
	visitedDirs[realPath] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log().Warning(fmt.Sprintf("cannot read directory: %v", err), logging.Path(dir))
		return true
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())

		info, ok := s.resolve(path, e)
		if !ok {
			continue
		}

		if info.IsDir() {
			// Early directory pruning - skip entire excluded directories
			if s.Exclude != nil && s.Exclude.ExcludesDir(path) {
				s.log().Debug("excluded directory", logging.Path(path))
				continue
			}
			if !s.walk(ctx, path, visitedDirs, yield) {
				return false
			}
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}
		if s.MaxFileSize > 0 && info.Size() > s.MaxFileSize {
			s.log().Debug(fmt.Sprintf("skipping oversized file (%d bytes > %d limit)", info.Size(), s.MaxFileSize), logging.Path(path))
			continue
		}
		if !yield(path) {
			return false
		}
	}
	return true
}

// resolve stats an entry, following symlinks only when configured
func (s *Scanner) resolve(path string, e fs.DirEntry) (fs.FileInfo, bool) {
	if e.Type()&fs.ModeSymlink != 0 {
		if !s.FollowSymlinks {
			return nil, false
		}
		info, err := os.Stat(path)
		if err != nil {
			s.log().Debug("skipping broken symlink", logging.Path(path))
			return nil, false
		}
		return info, true
	}
	info, err := e.Info()
	if err != nil {
		return nil, false
	}
	return info, true
}
