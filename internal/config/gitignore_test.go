package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreParser_BasicPatterns(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		isDir    bool
		expected bool
	}{
		{"Simple file match", "README.md", "README.md", false, true},
		{"Simple file no match", "README.md", "main.swift", false, false},
		{"Simple file matches in subdirectory", "README.md", "docs/README.md", false, true},
		{"Directory pattern matches directory", "Pods/", "Pods", true, true},
		{"Directory pattern matches files inside", "Pods/", "Pods/Alamofire/Source/Session.swift", false, true},
		{"Directory pattern no match outside", "Pods/", "Sources/App.swift", false, false},
		{"Absolute pattern match", "/build", "build", true, true},
		{"Absolute pattern no match nested", "/build", "Sources/build", true, false},
		{"Wildcard extension", "*.generated.swift", "Sources/Models.generated.swift", false, true},
		{"Wildcard no match", "*.generated.swift", "Sources/Models.swift", false, false},
		{"Middle slash anchors", "Sources/Generated", "Sources/Generated", true, true},
		{"Middle slash anchored no match", "Sources/Generated", "Lib/Sources/Generated", true, false},
		{"Double star prefix", "**/Fixtures", "Tests/Unit/Fixtures/a.json", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gp := NewGitignoreParser()
			gp.AddPattern(tt.pattern)
			assert.Equal(t, tt.expected, gp.ShouldIgnore(tt.path, tt.isDir))
		})
	}
}

func TestGitignoreParser_NegationPriority(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("*.log")
	gp.AddPattern("!keep.log")

	assert.True(t, gp.ShouldIgnore("debug.log", false))
	assert.False(t, gp.ShouldIgnore("keep.log", false))
	assert.False(t, gp.ShouldIgnore("logs/keep.log", false))

	// a later pattern re-ignores
	gp.AddPattern("logs/")
	assert.True(t, gp.ShouldIgnore("logs/keep.log", false))
}

func TestGitignoreParser_LoadGitignore(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"# Xcode",
		"xcuserdata/",
		"",
		"*.xcscmblueprint",
		"/DerivedData",
		"!Keep.xcscmblueprint",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))

	assert.True(t, gp.ShouldIgnore("App.xcodeproj/xcuserdata/me.xcuserdatad", true))
	assert.True(t, gp.ShouldIgnore("App.xcscmblueprint", false))
	assert.False(t, gp.ShouldIgnore("Keep.xcscmblueprint", false))
	assert.True(t, gp.ShouldIgnore("DerivedData/Build/x.swift", false))
	assert.False(t, gp.ShouldIgnore("Sources/App.swift", false))
}

func TestGitignoreParser_MissingFile(t *testing.T) {
	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(t.TempDir()))
	assert.Empty(t, gp.GetExclusionPatterns())
	assert.False(t, gp.ShouldIgnore("anything.swift", false))
}

func TestGitignoreParser_EdgeCases(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("/")
	gp.AddPattern("!")
	assert.Empty(t, gp.GetExclusionPatterns(), "empty patterns are dropped")
	assert.False(t, gp.ShouldIgnore("a.swift", false))
}

func TestGitignoreParser_GetExclusionPatterns(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("node_modules/")
	gp.AddPattern("*.log")
	gp.AddPattern("/dist")
	gp.AddPattern("!keep.log")

	assert.Equal(t, []string{
		"**/node_modules/**",
		"**/*.log",
		"**/*.log/**",
		"dist",
		"dist/**",
	}, gp.GetExclusionPatterns())
}
