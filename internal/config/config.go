package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// DefaultMaxFileSize skips files above 10MB; generated sources beyond that are never
	// worth a parser round trip.
	DefaultMaxFileSize = 10 * 1024 * 1024

	DefaultFileTimeoutMs         = 0
	DefaultSourceKittenTimeoutMs = 30000
	DefaultWatchDebounceMs       = 300
	DefaultLogLevel              = "warning"
)

type Config struct {
	Version int      `toml:"version"`
	Project Project  `toml:"project"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Filter  Filter   `toml:"filter"`
	Scan    Scan     `toml:"scan"`
	Parser  Parser   `toml:"parser"`
	Logging Logging  `toml:"logging"`
}

type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

// Filter configures the per-file filter chain
type Filter struct {
	SourceExtensions  []string `toml:"source_extensions"`
	ExclusionSuffixes []string `toml:"exclusion_suffixes"`
	ExclusionPaths    []string `toml:"exclusion_paths"`
	Keyword           string   `toml:"keyword"`
	Pattern           string   `toml:"pattern"`
	StrictKeyword     bool     `toml:"strict_keyword"` // Reject keywords the pattern does not imply
	SkipBinary        bool     `toml:"skip_binary"`
}

// Scan configures the scheduler and directory walk
type Scan struct {
	Workers          int   `toml:"workers"` // 0 = auto-detect (NumCPU-1)
	FailFast         bool  `toml:"fail_fast"`
	Ordered          bool  `toml:"ordered"`
	FileTimeoutMs    int   `toml:"file_timeout_ms"` // 0 = no per-file timeout
	RespectGitignore bool  `toml:"respect_gitignore"`
	FollowSymlinks   bool  `toml:"follow_symlinks"`
	MaxFileSize      int64 `toml:"max_file_size"`
	WatchDebounceMs  int   `toml:"watch_debounce_ms"`
}

type Parser struct {
	SourceKitten          string `toml:"sourcekitten"` // Path or name of the sourcekitten binary
	SourceKittenTimeoutMs int    `toml:"sourcekitten_timeout_ms"`
}

type Logging struct {
	Level string `toml:"level"`
}

// FileTimeout returns the per-file timeout, zero when disabled
func (s Scan) FileTimeout() time.Duration {
	return time.Duration(s.FileTimeoutMs) * time.Millisecond
}

// WatchDebounce returns the delay used to coalesce file change events
func (s Scan) WatchDebounce() time.Duration {
	return time.Duration(s.WatchDebounceMs) * time.Millisecond
}

// SourceKittenTimeout returns the bound on a single sourcekitten invocation
func (p Parser) SourceKittenTimeout() time.Duration {
	return time.Duration(p.SourceKittenTimeoutMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads the home directory config and the project config found in rootDir
// (or path when rootDir is empty) and merges them, project settings winning.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	} else if path != "" {
		searchDir = path
	}

	// Step 1: global base config from ~/.declscan.kdl or ~/.declscan.toml
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != searchDir {
		if globalCfg, err := loadFile(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config
	projectConfig, err := loadFile(searchDir)
	if err != nil {
		return nil, err
	}

	// Step 3: project overrides base, base exclusions preserved
	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = absOr(searchDir)
		baseConfig.EnrichExclusionsWithBuildArtifacts()
		return baseConfig, nil
	}

	cfg := Default(absOr(searchDir))
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// loadFile prefers .declscan.kdl and falls back to .declscan.toml
func loadFile(dir string) (*Config, error) {
	cfg, err := LoadKDL(dir)
	if err != nil || cfg != nil {
		return cfg, err
	}
	return LoadTOML(dir)
}

// Default returns the configuration used when no config file exists
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{
			Root: root,
			Name: filepath.Base(root),
		},
		Include: []string{},
		Exclude: DefaultExclusions(),
		Filter: Filter{
			SourceExtensions:  []string{".swift"},
			ExclusionSuffixes: []string{},
			ExclusionPaths:    []string{},
			SkipBinary:        true,
		},
		Scan: Scan{
			Workers:          max(1, runtime.NumCPU()-1),
			FileTimeoutMs:    DefaultFileTimeoutMs,
			RespectGitignore: true,
			FollowSymlinks:   false,
			MaxFileSize:      DefaultMaxFileSize,
			WatchDebounceMs:  DefaultWatchDebounceMs,
		},
		Parser: Parser{
			SourceKitten:          "sourcekitten",
			SourceKittenTimeoutMs: DefaultSourceKittenTimeoutMs,
		},
		Logging: Logging{
			Level: DefaultLogLevel,
		},
	}
}

// DefaultExclusions are directories and files that never hold scannable declarations
func DefaultExclusions() []string {
	return []string{
		// Git metadata and hidden directories
		"**/.git/**",
		"**/.*/**",

		// Swift and Apple tooling
		"**/.build/**",
		"**/Pods/**",
		"**/Carthage/Build/**",
		"**/Carthage/Checkouts/**",
		"**/DerivedData/**",
		"**/*.xcassets/**",
		"**/*.xcodeproj/**",
		"**/*.xcworkspace/**",

		// Package managers & dependencies
		"**/node_modules/**",
		"**/vendor/**",
		"**/venv/**",
		"**/__pycache__/**",

		// Build artifacts & output
		"**/build/**",
		"**/target/**", // Rust, Maven
		"**/out/**",
		"**/bin/**",
		"**/obj/**",

		// Editor temp files
		"**/*.swp",
		"**/*~",
	}
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		combined := make([]string, 0, len(base.Exclude)+len(project.Exclude))
		combined = append(combined, base.Exclude...)
		combined = append(combined, project.Exclude...)
		merged.Exclude = DeduplicatePatterns(combined)
	}

	// Inclusions: project overrides base completely if specified
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	// Filter lists follow the same rule
	if len(project.Filter.ExclusionSuffixes) == 0 {
		merged.Filter.ExclusionSuffixes = base.Filter.ExclusionSuffixes
	}
	if len(project.Filter.ExclusionPaths) == 0 {
		merged.Filter.ExclusionPaths = base.Filter.ExclusionPaths
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts detects build output directories from language configs
// and adds them to the exclusion list
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewBuildArtifactDetector(c.Project.Root)
	if detected := detector.DetectOutputDirectories(); len(detected) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
	}
}

// EnrichExclusionsWithGitignore appends the project's .gitignore entries to the
// exclusion list when Scan.RespectGitignore is set
func (c *Config) EnrichExclusionsWithGitignore() error {
	if !c.Scan.RespectGitignore || c.Project.Root == "" {
		return nil
	}
	gp := NewGitignoreParser()
	if err := gp.LoadGitignore(c.Project.Root); err != nil {
		return err
	}
	if patterns := gp.GetExclusionPatterns(); len(patterns) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, patterns...))
	}
	return nil
}

func absOr(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
