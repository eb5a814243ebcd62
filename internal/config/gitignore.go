package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser turns .gitignore entries into doublestar patterns
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{
		patterns: make([]GitignorePattern, 0),
	}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	return gp.scanAndParsePatterns(file)
}

func (gp *GitignoreParser) scanAndParsePatterns(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern adds a single gitignore line
func (gp *GitignoreParser) AddPattern(line string) {
	pattern := GitignorePattern{}

	if rest, ok := strings.CutPrefix(line, "!"); ok {
		pattern.Negate = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		pattern.Directory = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		pattern.Absolute = true
		line = rest
	} else if strings.Contains(line, "/") && !strings.HasPrefix(line, "**/") {
		// A slash in the middle anchors the pattern to the .gitignore directory
		pattern.Absolute = true
	}

	if line == "" {
		return
	}
	pattern.Pattern = line
	gp.patterns = append(gp.patterns, pattern)
}

// ShouldIgnore reports whether a slash-separated path relative to the root is ignored.
// Later patterns win, so a negation re-includes an earlier match.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)

	ignored := false
	for _, pattern := range gp.patterns {
		if gp.matchesPattern(pattern, path, isDir) {
			ignored = !pattern.Negate
		}
	}
	return ignored
}

func (gp *GitignoreParser) matchesPattern(pattern GitignorePattern, path string, isDir bool) bool {
	glob := toDoublestar(pattern)

	if !pattern.Directory || isDir {
		if ok, _ := doublestar.Match(glob, path); ok {
			return true
		}
	}
	// Anything below a matching directory is ignored too
	ok, _ := doublestar.Match(glob+"/**", path)
	return ok
}

// GetExclusionPatterns returns the non-negated patterns as doublestar exclusions
func (gp *GitignoreParser) GetExclusionPatterns() []string {
	var exclusions []string

	for _, pattern := range gp.patterns {
		if pattern.Negate {
			// Exclusion lists cannot re-include, negations only apply to ShouldIgnore
			continue
		}
		glob := toDoublestar(pattern)
		if !doublestar.ValidatePattern(glob) {
			continue
		}
		if !pattern.Directory {
			// "build" ignores a file or a directory of that name
			exclusions = append(exclusions, glob)
		}
		exclusions = append(exclusions, glob+"/**")
	}

	return exclusions
}

func toDoublestar(pattern GitignorePattern) string {
	if pattern.Absolute || strings.HasPrefix(pattern.Pattern, "**/") {
		return pattern.Pattern
	}
	return "**/" + pattern.Pattern
}
