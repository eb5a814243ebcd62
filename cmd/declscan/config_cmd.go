package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/declscan/internal/config"
)

const kdlTemplate = `// declscan configuration

project {
    // root "."                    // Relative roots resolve against this file's directory
}

// Only scan paths matching these globs (relative to the root)
include {
    // "Sources/**"
}

// Replaces the default exclusions (hidden dirs, .build, Pods, DerivedData, ...)
// exclude {
//     "**/Generated/**"
// }

filter {
    source_extensions ".swift"
    exclusion_suffixes "Tests" "Mocks"
    // exclusion_paths "/Fixtures/"
    // keyword "Component"         // Literal every candidate file must contain
    // pattern "class \\w+: *Component"
    // strict_keyword true         // Fail when the pattern does not require the keyword
    skip_binary true
}

scan {
    // workers 4                   // Default: CPU count - 1
    fail_fast false
    ordered false
    file_timeout_ms 0              // 0 disables the per-file timeout
    respect_gitignore true
    follow_symlinks false
    max_file_size "10MB"
    watch_debounce_ms 300
}

parser {
    sourcekitten "sourcekitten"
    sourcekitten_timeout_ms 30000
}

logging {
    level "warning"                // debug, info, warning, error
}
`

func configInitCommand(c *cli.Context) error {
	dir := "."
	if c.Args().Present() {
		dir = c.Args().First()
	}
	output := filepath.Join(dir, config.KDLFileName)

	if !c.Bool("force") {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", output)
		}
	}

	if err := os.WriteFile(output, []byte(kdlTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Configuration file created: %s\n", output)
	return nil
}

func configShowCommand(c *cli.Context) error {
	t, err := resolveTarget(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c, t)
	if err != nil {
		return err
	}
	displayConfigTable(c.App.Writer, cfg)
	return nil
}

func configValidateCommand(c *cli.Context) error {
	t, err := resolveTarget(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c, t)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	var warnings []string
	if cfg.Filter.Keyword != "" && cfg.Filter.Pattern == "" {
		warnings = append(warnings, "keyword set without a pattern; every file containing it will be parsed")
	}
	if cfg.Scan.FileTimeoutMs == 0 {
		warnings = append(warnings, "no per-file timeout; a hung parser blocks one worker until the run is canceled")
	}
	if len(cfg.Include) == 0 && len(cfg.Filter.SourceExtensions) == 1 && cfg.Filter.SourceExtensions[0] == ".swift" {
		info, err := os.Stat(filepath.Join(cfg.Project.Root, "Package.swift"))
		if err != nil || info.IsDir() {
			warnings = append(warnings, "no Package.swift at the root; check source_extensions if this is not a Swift project")
		}
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Configuration is valid\n")
	fmt.Fprintf(w, "Root: %s\n", cfg.Project.Root)
	fmt.Fprintf(w, "Settings: %d workers, %d exclusions, extensions %s\n",
		cfg.Scan.Workers, len(cfg.Exclude), strings.Join(cfg.Filter.SourceExtensions, " "))

	if len(warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, warning := range warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	return nil
}

func displayConfigTable(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "declscan Configuration\n")
	fmt.Fprintf(w, "======================\n\n")

	fmt.Fprintf(w, "Project Settings:\n")
	fmt.Fprintf(w, "  Name:               %s\n", cfg.Project.Name)
	fmt.Fprintf(w, "  Root:               %s\n", cfg.Project.Root)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Filter Settings:\n")
	fmt.Fprintf(w, "  Source extensions:  %s\n", strings.Join(cfg.Filter.SourceExtensions, " "))
	fmt.Fprintf(w, "  Exclusion suffixes: %s\n", strings.Join(cfg.Filter.ExclusionSuffixes, " "))
	fmt.Fprintf(w, "  Exclusion paths:    %s\n", strings.Join(cfg.Filter.ExclusionPaths, " "))
	fmt.Fprintf(w, "  Keyword:            %q\n", cfg.Filter.Keyword)
	fmt.Fprintf(w, "  Pattern:            %q\n", cfg.Filter.Pattern)
	fmt.Fprintf(w, "  Strict keyword:     %t\n", cfg.Filter.StrictKeyword)
	fmt.Fprintf(w, "  Skip binary:        %t\n", cfg.Filter.SkipBinary)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Scan Settings:\n")
	fmt.Fprintf(w, "  Workers:            %d\n", cfg.Scan.Workers)
	fmt.Fprintf(w, "  Fail fast:          %t\n", cfg.Scan.FailFast)
	fmt.Fprintf(w, "  Ordered:            %t\n", cfg.Scan.Ordered)
	fmt.Fprintf(w, "  File timeout:       %s\n", cfg.Scan.FileTimeout())
	fmt.Fprintf(w, "  Max file size:      %.1f MB\n", float64(cfg.Scan.MaxFileSize)/(1024*1024))
	fmt.Fprintf(w, "  Follow symlinks:    %t\n", cfg.Scan.FollowSymlinks)
	fmt.Fprintf(w, "  Respect .gitignore: %t\n", cfg.Scan.RespectGitignore)
	fmt.Fprintf(w, "  Watch debounce:     %s\n", cfg.Scan.WatchDebounce())
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Parser Settings:\n")
	fmt.Fprintf(w, "  sourcekitten:       %s (timeout %s)\n", cfg.Parser.SourceKitten, cfg.Parser.SourceKittenTimeout())
	fmt.Fprintf(w, "  Log level:          %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Include Patterns (%d):\n", len(cfg.Include))
	for _, pattern := range cfg.Include {
		fmt.Fprintf(w, "  %s\n", pattern)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Exclude Patterns (%d):\n", len(cfg.Exclude))
	for _, pattern := range cfg.Exclude {
		fmt.Fprintf(w, "  %s\n", pattern)
	}
}
