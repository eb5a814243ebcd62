package pipeline

import (
	"github.com/standardbeagle/declscan/internal/config"
	"github.com/standardbeagle/declscan/internal/filter"
	"github.com/standardbeagle/declscan/internal/logging"
)

// NewChainFromConfig builds the filter chain a configuration describes. Path filters
// run as glob, source path, binary extension; content filters as binary signature,
// then keyword and pattern.
func NewChainFromConfig(cfg *config.Config, logger *logging.Logger) (*filter.Chain, error) {
	glob, err := filter.NewGlobPathFilter(cfg.Project.Root, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}

	filters := []filter.Filter{
		glob,
		filter.NewSourcePathFilter(cfg.Filter.SourceExtensions, cfg.Filter.ExclusionSuffixes, cfg.Filter.ExclusionPaths),
	}
	if cfg.Filter.SkipBinary {
		filters = append(filters, filter.BinaryContentFilter{})
	}
	if cfg.Filter.Keyword != "" || cfg.Filter.Pattern != "" {
		kf, err := filter.NewKeywordPatternFilter(cfg.Filter.Keyword, cfg.Filter.Pattern, cfg.Filter.StrictKeyword, logger)
		if err != nil {
			return nil, err
		}
		filters = append(filters, kf)
	}
	return filter.NewChain(filters...), nil
}

// NewScannerFromConfig creates a scanner over the project root that prunes excluded
// directories and oversized files.
func NewScannerFromConfig(cfg *config.Config, logger *logging.Logger) (*Scanner, error) {
	exclude, err := filter.NewGlobPathFilter(cfg.Project.Root, nil, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	s := NewScanner(cfg.Project.Root, exclude, logger)
	s.FollowSymlinks = cfg.Scan.FollowSymlinks
	s.MaxFileSize = cfg.Scan.MaxFileSize
	return s, nil
}

// OptionsFromConfig maps the scan section onto scheduler options
func OptionsFromConfig[T any](cfg *config.Config) Options[T] {
	policy := BestEffort
	if cfg.Scan.FailFast {
		policy = FailFast
	}
	return Options[T]{
		Workers:     cfg.Scan.Workers,
		Policy:      policy,
		Ordered:     cfg.Scan.Ordered,
		FileTimeout: cfg.Scan.FileTimeout(),
	}
}
