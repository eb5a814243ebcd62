package testhelpers

import (
	"github.com/standardbeagle/declscan/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults:
// no gitignore lookups, two workers and ordered results so assertions are stable.
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(projectPath).
//		WithExtensions(".java").
//		WithExclusions("**/Generated/**").
//		Build()
type TestConfigBuilder struct {
	cfg *config.Config
}

// NewTestConfigBuilder creates a config builder for a project path
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	cfg := config.Default(projectRoot)
	cfg.Scan.Workers = 2
	cfg.Scan.Ordered = true
	cfg.Scan.RespectGitignore = false // Disabled for tests
	cfg.Scan.WatchDebounceMs = 10     // Fast debounce for tests
	return &TestConfigBuilder{cfg: cfg}
}

// WithExclusions adds additional exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.cfg.Exclude = append(b.cfg.Exclude, patterns...)
	return b
}

// WithIncludePatterns sets the include patterns (replaces defaults)
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.cfg.Include = patterns
	return b
}

// WithExtensions sets the source extensions (replaces the Swift default)
func (b *TestConfigBuilder) WithExtensions(exts ...string) *TestConfigBuilder {
	b.cfg.Filter.SourceExtensions = exts
	return b
}

// WithExclusionSuffixes sets the file name suffixes the source path filter rejects
func (b *TestConfigBuilder) WithExclusionSuffixes(suffixes ...string) *TestConfigBuilder {
	b.cfg.Filter.ExclusionSuffixes = suffixes
	return b
}

// WithKeywordPattern configures the content filter
func (b *TestConfigBuilder) WithKeywordPattern(keyword, pattern string) *TestConfigBuilder {
	b.cfg.Filter.Keyword = keyword
	b.cfg.Filter.Pattern = pattern
	return b
}

// WithWorkers sets the worker count
func (b *TestConfigBuilder) WithWorkers(n int) *TestConfigBuilder {
	b.cfg.Scan.Workers = n
	return b
}

// Build returns the config. The builder must not be reused afterwards.
func (b *TestConfigBuilder) Build() *config.Config {
	return b.cfg
}
