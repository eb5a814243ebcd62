package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{".swift"}, cfg.Filter.SourceExtensions)
	assert.True(t, cfg.Filter.SkipBinary)
	assert.True(t, cfg.Scan.RespectGitignore)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Scan.MaxFileSize)
	assert.Equal(t, "sourcekitten", cfg.Parser.SourceKitten)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Contains(t, cfg.Exclude, "**/.build/**")
}

func TestParseKDL_FullConfig(t *testing.T) {
	kdlContent := `
version 1
project {
    name "needle"
    root "Sources"
}
include "**/*.swift" "**/*.java"
filter {
    source_extensions ".swift" ".java"
    exclusion_suffixes "Tests" "Mocks"
    exclusion_paths "/Fixtures/"
    keyword "Component"
    pattern "class \\w+: *Component"
    strict_keyword true
    skip_binary false
}
scan {
    workers 3
    fail_fast true
    ordered true
    file_timeout_ms 2500
    respect_gitignore false
    follow_symlinks true
    max_file_size "2MB"
    watch_debounce_ms 150
}
parser {
    sourcekitten "/opt/bin/sourcekitten"
    sourcekitten_timeout_ms 5000
}
logging {
    level "debug"
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "needle", cfg.Project.Name)
	assert.Equal(t, "Sources", cfg.Project.Root)
	assert.Equal(t, []string{"**/*.swift", "**/*.java"}, cfg.Include)

	assert.Equal(t, []string{".swift", ".java"}, cfg.Filter.SourceExtensions)
	assert.Equal(t, []string{"Tests", "Mocks"}, cfg.Filter.ExclusionSuffixes)
	assert.Equal(t, []string{"/Fixtures/"}, cfg.Filter.ExclusionPaths)
	assert.Equal(t, "Component", cfg.Filter.Keyword)
	assert.Equal(t, `class \w+: *Component`, cfg.Filter.Pattern)
	assert.True(t, cfg.Filter.StrictKeyword)
	assert.False(t, cfg.Filter.SkipBinary)

	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.True(t, cfg.Scan.FailFast)
	assert.True(t, cfg.Scan.Ordered)
	assert.Equal(t, 2500, cfg.Scan.FileTimeoutMs)
	assert.False(t, cfg.Scan.RespectGitignore)
	assert.True(t, cfg.Scan.FollowSymlinks)
	assert.Equal(t, int64(2*1024*1024), cfg.Scan.MaxFileSize)
	assert.Equal(t, 150, cfg.Scan.WatchDebounceMs)

	assert.Equal(t, "/opt/bin/sourcekitten", cfg.Parser.SourceKitten)
	assert.Equal(t, 5000, cfg.Parser.SourceKittenTimeoutMs)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParseKDL_ExcludeBlockReplacesDefaults(t *testing.T) {
	cfg, err := parseKDL(`
exclude {
    "**/Generated/**"
    "**/*.pb.swift"
}
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/Generated/**", "**/*.pb.swift"}, cfg.Exclude)
}

func TestParseKDL_InvalidSize(t *testing.T) {
	_, err := parseKDL(`scan { max_file_size "lots"; }`)
	assert.Error(t, err)
}

func TestParseKDL_SyntaxError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unclosed block", `scan { workers 3`},
		{"unclosed nested block", "filter {\n    keyword \"Component\"\n    scan {\n}\n"},
		{"stray close", "scan { workers 3 }\n}"},
		{"unterminated string", `filter { keyword "Component }`},
		{"unterminated comment", "/* scan { workers 3 }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseKDL(tt.content)
			assert.Nil(t, cfg)
			var configErr *declerrors.ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, "kdl", configErr.Field)
		})
	}
}

func TestCheckBlocks_IgnoresBracesInStringsAndComments(t *testing.T) {
	content := `// scan {
/* { */
filter {
    pattern "class \\w+ \\{"
    keyword r#"Comp"onent{"#
}
`
	require.NoError(t, checkBlocks(content))

	cfg, err := parseKDL(`filter { pattern "\\{\\}"; }`)
	require.NoError(t, err)
	assert.Equal(t, `\{\}`, cfg.Filter.Pattern)
}

func TestLoadKDL_TruncatedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, KDLFileName, "scan {\n    workers 3\n")

	_, err := LoadKDL(root)
	var configErr *declerrors.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, err.Error(), "line 1")
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"500kb", 500 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"64B", 64},
		{"2048", 2048},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadKDL(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadKDL(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("relative root resolved against config dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, KDLFileName), []byte(`project { root "Sources"; }`), 0o644))

		cfg, err := LoadKDL(dir)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, filepath.Join(dir, "Sources"), cfg.Project.Root)
		assert.Equal(t, "Sources", cfg.Project.Name)
	})

	t.Run("default root is config dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, KDLFileName), []byte(`logging { level "info"; }`), 0o644))

		cfg, err := LoadKDL(dir)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, dir, cfg.Project.Root)
		assert.Equal(t, "info", cfg.Logging.Level)
	})
}
