package config

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/filter"
	"github.com/standardbeagle/declscan/internal/logging"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Every failure is a *errors.ConfigError naming the offending field.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setSmartDefaults(cfg)

	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return declerrors.NewConfigError("project.root", cfg.Project.Root, err)
	}

	if err := v.validatePatterns(cfg); err != nil {
		return err
	}

	if err := v.validateFilterConfig(&cfg.Filter); err != nil {
		return err
	}

	if err := v.validateScanConfig(&cfg.Scan); err != nil {
		return err
	}

	if cfg.Parser.SourceKittenTimeoutMs < 0 {
		return declerrors.NewConfigError("parser.sourcekitten_timeout_ms", strconv.Itoa(cfg.Parser.SourceKittenTimeoutMs),
			errors.New("timeout cannot be negative"))
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return declerrors.NewConfigError("logging.level", cfg.Logging.Level, err)
	}

	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validatePatterns(cfg *Config) error {
	for _, p := range cfg.Include {
		if !doublestar.ValidatePattern(p) {
			return declerrors.NewConfigError("include", p, doublestar.ErrBadPattern)
		}
	}
	for _, p := range cfg.Exclude {
		if !doublestar.ValidatePattern(p) {
			return declerrors.NewConfigError("exclude", p, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// validateFilterConfig builds the keyword filter once so pattern and strict keyword
// problems surface before any file is read
func (v *Validator) validateFilterConfig(f *Filter) error {
	if f.Keyword == "" && f.Pattern == "" {
		return nil
	}
	_, err := filter.NewKeywordPatternFilter(f.Keyword, f.Pattern, f.StrictKeyword, logging.New(io.Discard))
	return err
}

func (v *Validator) validateScanConfig(scan *Scan) error {
	if scan.Workers <= 0 {
		return declerrors.NewConfigError("scan.workers", strconv.Itoa(scan.Workers), errors.New("workers must be at least 1"))
	}

	if scan.FileTimeoutMs < 0 {
		return declerrors.NewConfigError("scan.file_timeout_ms", strconv.Itoa(scan.FileTimeoutMs), errors.New("timeout cannot be negative"))
	}

	if scan.MaxFileSize <= 0 {
		return declerrors.NewConfigError("scan.max_file_size", strconv.FormatInt(scan.MaxFileSize, 10),
			fmt.Errorf("MaxFileSize must be positive, got %d", scan.MaxFileSize))
	}

	if scan.MaxFileSize > 100*1024*1024 {
		return declerrors.NewConfigError("scan.max_file_size", strconv.FormatInt(scan.MaxFileSize, 10),
			fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", scan.MaxFileSize))
	}

	if scan.WatchDebounceMs < 0 {
		return declerrors.NewConfigError("scan.watch_debounce_ms", strconv.Itoa(scan.WatchDebounceMs), errors.New("debounce cannot be negative"))
	}

	return nil
}

// setSmartDefaults fills unset values; explicit negatives are left for validation to reject
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Use cores-1 to leave headroom for the system, minimum of 1
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Scan.MaxFileSize == 0 {
		cfg.Scan.MaxFileSize = DefaultMaxFileSize
	}

	if cfg.Parser.SourceKitten == "" {
		cfg.Parser.SourceKitten = "sourcekitten"
	}

	if cfg.Parser.SourceKittenTimeoutMs == 0 {
		cfg.Parser.SourceKittenTimeoutMs = DefaultSourceKittenTimeoutMs
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}

	if len(cfg.Filter.SourceExtensions) == 0 {
		cfg.Filter.SourceExtensions = []string{".swift"}
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
