package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/declscan/internal/config"
	"github.com/standardbeagle/declscan/internal/logging"
	"github.com/standardbeagle/declscan/internal/version"
)

// target is the resolved scan target: a directory, or a single file inside Dir
type target struct {
	Path  string
	Dir   string
	IsDir bool
}

func resolveTarget(c *cli.Context) (target, error) {
	root := c.String("root")
	if c.Args().Present() {
		root = c.Args().First()
	}
	if root == "" {
		root = "."
	}

	// Convert to absolute path to ensure consistent path handling
	abs, err := filepath.Abs(root)
	if err != nil {
		return target{}, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return target{}, fmt.Errorf("cannot scan %s: %w", root, err)
	}
	if info.IsDir() {
		return target{Path: abs, Dir: abs, IsDir: true}, nil
	}
	return target{Path: abs, Dir: filepath.Dir(abs)}, nil
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context, t target) (*config.Config, error) {
	configDir := c.String("config")
	if configDir == "" {
		configDir = t.Dir
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configDir, err)
	}

	// an explicit root wins over the one in the config file
	if c.Args().Present() || c.IsSet("root") || c.String("config") != "" {
		cfg.Project.Root = t.Dir
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}

	applyScanFlags(c, cfg)

	if err := cfg.EnrichExclusionsWithGitignore(); err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyScanFlags(c *cli.Context, cfg *config.Config) {
	if v := c.StringSlice("extension"); len(v) > 0 {
		cfg.Filter.SourceExtensions = v
	}
	if v := c.StringSlice("exclude-suffix"); len(v) > 0 {
		cfg.Filter.ExclusionSuffixes = v
	}
	if v := c.StringSlice("exclude-path"); len(v) > 0 {
		cfg.Filter.ExclusionPaths = v
	}
	if c.IsSet("keyword") {
		cfg.Filter.Keyword = c.String("keyword")
	}
	if c.IsSet("pattern") {
		cfg.Filter.Pattern = c.String("pattern")
	}
	if c.IsSet("strict-keyword") {
		cfg.Filter.StrictKeyword = c.Bool("strict-keyword")
	}
	if c.IsSet("workers") {
		cfg.Scan.Workers = c.Int("workers")
	}
	if c.IsSet("fail-fast") {
		cfg.Scan.FailFast = c.Bool("fail-fast")
	}
	if c.IsSet("ordered") {
		cfg.Scan.Ordered = c.Bool("ordered")
	}
	if c.IsSet("timeout") {
		cfg.Scan.FileTimeoutMs = int(c.Duration("timeout") / time.Millisecond)
	}
	if c.IsSet("follow-symlinks") {
		cfg.Scan.FollowSymlinks = c.Bool("follow-symlinks")
	}
	if c.Bool("no-gitignore") {
		cfg.Scan.RespectGitignore = false
	}
	if c.IsSet("sourcekitten") {
		cfg.Parser.SourceKitten = c.String("sourcekitten")
	}
}

// scanFlags are shared by scan and watch
func scanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "extension",
			Usage: "Source file extensions to parse (e.g., --extension .swift --extension .java)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude-suffix",
			Usage: "Skip files whose name without extension ends with this suffix (e.g., --exclude-suffix Tests)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude-path",
			Usage: "Skip files whose path contains this fragment (e.g., --exclude-path Generated)",
		},
		&cli.StringFlag{
			Name:    "keyword",
			Aliases: []string{"k"},
			Usage:   "Only parse files containing this literal",
		},
		&cli.StringFlag{
			Name:    "pattern",
			Aliases: []string{"p"},
			Usage:   "Only parse files matching this regular expression",
		},
		&cli.BoolFlag{
			Name:  "strict-keyword",
			Usage: "Fail when the keyword is not required by every match of the pattern",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Number of files processed concurrently (default: CPU count - 1)",
		},
		&cli.BoolFlag{
			Name:  "fail-fast",
			Usage: "Stop dispatching files after the first failure",
		},
		&cli.BoolFlag{
			Name:  "ordered",
			Usage: "Report files in walk order instead of completion order",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-file processing timeout (e.g., --timeout 5s, 0 disables)",
		},
		&cli.BoolFlag{
			Name:  "follow-symlinks",
			Usage: "Follow symbolic links while walking",
		},
		&cli.BoolFlag{
			Name:  "no-gitignore",
			Usage: "Do not add .gitignore entries to the exclusions",
		},
		&cli.StringFlag{
			Name:  "sourcekitten",
			Usage: "Path of the sourcekitten binary used for Swift files",
		},
		&cli.BoolFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "Output as JSON",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Also list skipped files",
		},
	}
}

// setupLogging installs the process-wide logger at the configured level
func setupLogging(c *cli.Context, cfg *config.Config) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		// validated already; keep the default rather than fail late
		level = logging.DefaultLevel
	}
	return logging.Init(c.App.ErrWriter, level)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "declscan",
		Usage:                  "Extract type, method and property declarations from source trees",
		Version:                version.FullInfo(),
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		// main picks the exit status; commands only return errors
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Directory holding .declscan.kdl or .declscan.toml (default: the scan root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to scan (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'Sources/**')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/Generated/**')",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Minimum log level: debug, info, warning, error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Aliases:   []string{"s"},
				Usage:     "Scan a directory or file and print its declarations",
				ArgsUsage: "[ROOT]",
				Flags:     scanFlags(),
				Action:    scanCommand,
			},
			{
				Name:      "watch",
				Usage:     "Rescan changed files until interrupted",
				ArgsUsage: "[ROOT]",
				Flags: append(scanFlags(), &cli.DurationFlag{
					Name:  "debounce",
					Usage: "Delay used to coalesce file changes (default from config)",
				}),
				Action: watchCommand,
			},
			{
				Name:   "kinds",
				Usage:  "List declaration kinds and the raw parser identifiers mapped to them",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"}},
				Action: kindsCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:      "init",
						Usage:     "Create a .declscan.kdl in the current directory",
						ArgsUsage: "[DIR]",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite existing file"},
						},
						Action: configInitCommand,
					},
					{
						Name:      "show",
						Usage:     "Show the effective configuration",
						ArgsUsage: "[ROOT]",
						Action:    configShowCommand,
					},
					{
						Name:      "validate",
						Usage:     "Validate the configuration",
						ArgsUsage: "[ROOT]",
						Action:    configValidateCommand,
					},
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		fatal(logging.Default(), err)
	}
}

// fatal reports a whole-run failure through the logger, which exits with the
// error's code
func fatal(logger *logging.Logger, err error) {
	logger.ErrorCode(exitCode(err), err.Error())
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
