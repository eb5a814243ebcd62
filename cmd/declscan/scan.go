package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/declscan/internal/ast"
	"github.com/standardbeagle/declscan/internal/config"
	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/logging"
	"github.com/standardbeagle/declscan/internal/parser"
	"github.com/standardbeagle/declscan/internal/pipeline"
	"github.com/standardbeagle/declscan/pkg/pathutil"
)

// fileReport is the JSON form of one file result
type fileReport struct {
	Path         string           `json:"path"`
	Status       pipeline.Status  `json:"status"`
	Stage        declerrors.Stage `json:"stage,omitempty"`
	Error        string           `json:"error,omitempty"`
	SkippedBy    string           `json:"skipped_by,omitempty"`
	Digest       string           `json:"digest,omitempty"`
	DurationMs   float64          `json:"duration_ms"`
	Declarations *ast.FileSummary `json:"declarations,omitempty"`
}

type summaryReport struct {
	Processed  int                      `json:"processed"`
	Skipped    int                      `json:"skipped"`
	Failed     int                      `json:"failed"`
	ByStage    map[declerrors.Stage]int `json:"failed_by_stage,omitempty"`
	DurationMs int64                    `json:"duration_ms"`
	Aborted    bool                     `json:"aborted,omitempty"`
}

type scanReport struct {
	Timestamp time.Time     `json:"timestamp"`
	Root      string        `json:"root"`
	Files     []fileReport  `json:"files"`
	Summary   summaryReport `json:"summary"`
}

// session holds everything one scan or watch invocation builds from its flags
type session struct {
	target    target
	cfg       *config.Config
	logger    *logging.Logger
	scanner   *pipeline.Scanner
	scheduler *pipeline.Scheduler[ast.FileSummary]
	parsers   *parser.Registry
	out       io.Writer
	asJSON    bool
	verbose   bool
}

func summarize(_ context.Context, _ string, root *ast.Node) (ast.FileSummary, error) {
	return ast.Summarize(root)
}

func newSession(c *cli.Context) (*session, error) {
	t, err := resolveTarget(c)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfigWithOverrides(c, t)
	if err != nil {
		return nil, err
	}
	logger := setupLogging(c, cfg)

	chain, err := pipeline.NewChainFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	scanner, err := pipeline.NewScannerFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	if !t.IsDir {
		scanner.Root = t.Path
	}

	s := &session{
		target:  t,
		cfg:     cfg,
		logger:  logger,
		scanner: scanner,
		out:     c.App.Writer,
		asJSON:  c.Bool("json"),
		verbose: c.Bool("verbose"),
	}

	opts := pipeline.OptionsFromConfig[ast.FileSummary](cfg)
	if !s.asJSON {
		// text output streams as results arrive
		opts.OnResult = s.printResult
	}
	s.parsers = newParser(cfg, logger)
	s.scheduler, err = pipeline.NewScheduler(chain, pipeline.NewDriver(s.parsers, summarize), opts, logger)
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) close() {
	if err := s.parsers.Close(); err != nil {
		s.logger.Warning(fmt.Sprintf("failed to release parsers: %v", err))
	}
}

// newParser registers sourcekitten for Swift and the tree-sitter dialects for the rest
func newParser(cfg *config.Config, logger *logging.Logger) *parser.Registry {
	sk := parser.NewSourceKitParser(cfg.Parser.SourceKitten, cfg.Parser.SourceKittenTimeout())
	if !sk.Available() && wantsSwift(cfg.Filter.SourceExtensions) {
		logger.Warning(fmt.Sprintf("%s not found on PATH; Swift files will fail to parse", sk.Binary))
	}
	return parser.DefaultRegistry(sk, cfg.Scan.Workers)
}

func wantsSwift(exts []string) bool {
	for _, ext := range exts {
		if strings.EqualFold(strings.TrimPrefix(ext, "."), "swift") {
			return true
		}
	}
	return false
}

func (s *session) run(ctx context.Context, paths iter.Seq[string]) (*pipeline.RunResult[ast.FileSummary], error) {
	result, err := s.scheduler.Run(ctx, paths)
	if err != nil && !errors.Is(err, pipeline.ErrRunAborted) {
		return result, err
	}

	aborted := errors.Is(err, pipeline.ErrRunAborted)
	if s.asJSON {
		if encErr := s.writeJSON(result, aborted); encErr != nil {
			return result, encErr
		}
	} else {
		s.printSummary(result.Summary, aborted)
	}
	return result, err
}

func scanCommand(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	result, err := s.run(c.Context, s.scanner.Paths(c.Context))
	switch {
	case errors.Is(err, pipeline.ErrRunAborted):
		return cli.Exit(fmt.Sprintf("scan aborted: %v", result.Err()), 1)
	case err != nil:
		return err
	}
	return nil
}

func (s *session) display(path string) string {
	root := s.cfg.Project.Root
	if !s.target.IsDir {
		root = s.target.Dir
	}
	return pathutil.Display(path, root)
}

func (s *session) report(result *pipeline.RunResult[ast.FileSummary], aborted bool) scanReport {
	rep := scanReport{
		Timestamp: time.Now(),
		Root:      s.cfg.Project.Root,
		Files:     make([]fileReport, 0, len(result.Files)),
		Summary: summaryReport{
			Processed:  result.Summary.Processed,
			Skipped:    result.Summary.Skipped,
			Failed:     result.Summary.Failed,
			ByStage:    result.Summary.ByStage,
			DurationMs: result.Summary.Duration.Milliseconds(),
			Aborted:    aborted,
		},
	}
	for _, f := range result.Files {
		if f.Status == pipeline.StatusSkipped && !s.verbose {
			continue
		}
		fr := fileReport{
			Path:       s.display(f.Path),
			Status:     f.Status,
			Stage:      f.Stage,
			DurationMs: float64(f.Duration.Microseconds()) / 1000,
		}
		switch f.Status {
		case pipeline.StatusProcessed:
			decls := f.Value
			fr.Declarations = &decls
			fr.Digest = strconv.FormatUint(f.Digest, 16)
		case pipeline.StatusSkipped:
			fr.SkippedBy = f.Skip.String()
		case pipeline.StatusFailed:
			fr.Error = f.Err.Error()
		}
		rep.Files = append(rep.Files, fr)
	}
	return rep
}

func (s *session) writeJSON(result *pipeline.RunResult[ast.FileSummary], aborted bool) error {
	data, err := json.MarshalIndent(s.report(result, aborted), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = fmt.Fprintln(s.out, string(data))
	return err
}

func (s *session) printResult(f pipeline.FileResult[ast.FileSummary]) {
	path := s.display(f.Path)
	switch f.Status {
	case pipeline.StatusProcessed:
		printDeclarations(s.out, path, f.Value)
	case pipeline.StatusFailed:
		fmt.Fprintf(s.out, "%s: %s failed: %v\n", path, f.Stage, f.Err)
	case pipeline.StatusSkipped:
		if s.verbose {
			fmt.Fprintf(s.out, "%s: skipped by %s\n", path, f.Skip)
		}
	}
}

func printDeclarations(w io.Writer, path string, summary ast.FileSummary) {
	fmt.Fprintln(w, path)
	for _, t := range summary.Types {
		line := fmt.Sprintf("  %s %s", t.Kind, t.Name)
		if len(t.Inherits) > 0 {
			line += ": " + strings.Join(t.Inherits, ", ")
		}
		fmt.Fprintln(w, line)
		for _, p := range t.Properties {
			fmt.Fprintf(w, "    %s\n", formatMember("var", p))
		}
		for _, m := range t.Methods {
			fmt.Fprintf(w, "    %s\n", formatMember("func", m))
		}
		if len(t.Calls) > 0 {
			fmt.Fprintf(w, "    calls: %s\n", strings.Join(t.Calls, ", "))
		}
	}
	for _, g := range summary.GlobalProperties {
		fmt.Fprintf(w, "  %s\n", formatMember("var", g))
	}
}

func formatMember(keyword string, m ast.Member) string {
	var b strings.Builder
	if m.Override {
		b.WriteString("override ")
	}
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(m.Name)
	if m.Type != "" {
		if keyword == "func" {
			b.WriteString(" -> ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(m.Type)
	}
	return b.String()
}

func (s *session) printSummary(sum pipeline.Summary, aborted bool) {
	line := fmt.Sprintf("%d files: %d processed, %d skipped, %d failed",
		sum.Total(), sum.Processed, sum.Skipped, sum.Failed)
	if sum.Failed > 0 {
		var stages []string
		for _, stage := range []declerrors.Stage{declerrors.StageRead, declerrors.StageParse, declerrors.StageExtract, declerrors.StageTimeout} {
			if n := sum.ByStage[stage]; n > 0 {
				stages = append(stages, fmt.Sprintf("%s: %d", stage, n))
			}
		}
		line += " (" + strings.Join(stages, ", ") + ")"
	}
	line += fmt.Sprintf(" in %s", sum.Duration.Round(time.Millisecond))
	if aborted {
		line += ", aborted after first failure"
	}
	fmt.Fprintln(s.out, line)
}
