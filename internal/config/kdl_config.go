package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
)

// KDLFileName is the project config file looked up in the scan root
const KDLFileName = ".declscan.kdl"

// LoadKDL attempts to load configuration from .declscan.kdl.
// It returns nil, nil when the file does not exist.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, KDLFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", KDLFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", kdlPath, err)
	}

	resolveRoot(cfg, projectRoot)
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// resolveRoot makes Project.Root absolute, resolving relative roots against the
// directory holding the config file
func resolveRoot(cfg *Config, projectRoot string) {
	if cfg.Project.Root != "" {
		root := cfg.Project.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(projectRoot, root)
		}
		cfg.Project.Root = filepath.Clean(root)
	} else {
		cfg.Project.Root = absOr(projectRoot)
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}
}

// parseKDL walks the KDL document, overriding defaults with whatever the file sets.
//
//	project { name "app"; root "." }
//	include "Sources/**"
//	exclude { "**/Generated/**" }
//	filter {
//	    source_extensions ".swift"
//	    exclusion_suffixes "Tests" "Mocks"
//	    keyword "Component"
//	    pattern "class \\w+: *Component"
//	}
//	scan { workers 4; fail_fast true; max_file_size "2MB" }
//	parser { sourcekitten "/usr/local/bin/sourcekitten" }
//	logging { level "info" }
func parseKDL(content string) (*Config, error) {
	// kdl-go closes blocks left open at EOF, so a truncated file would load silently
	if err := checkBlocks(content); err != nil {
		return nil, declerrors.NewConfigError("kdl", "", err)
	}
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, declerrors.NewConfigError("kdl", "", err)
	}

	cfg := Default("")
	cfg.Project.Name = ""

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(s string) { cfg.Project.Root = s })
				assignSimpleString(cn, "name", func(s string) { cfg.Project.Name = s })
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// An exclude block replaces the default exclusions
			cfg.Exclude = collectStringArgs(n)
		case "filter":
			if err := parseFilterSection(cfg, n); err != nil {
				return nil, err
			}
		case "scan":
			if err := parseScanSection(cfg, n); err != nil {
				return nil, err
			}
		case "parser":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "sourcekitten":
					if s, ok := firstStringArg(cn); ok {
						cfg.Parser.SourceKitten = s
					}
				case "sourcekitten_timeout_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Parser.SourceKittenTimeoutMs = v
					}
				}
			}
		case "logging":
			for _, cn := range n.Children {
				assignSimpleString(cn, "level", func(s string) { cfg.Logging.Level = s })
			}
		}
	}

	return cfg, nil
}

// checkBlocks reports unbalanced braces outside strings and comments
func checkBlocks(content string) error {
	line := 1
	var opened []int // line of each open brace
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '\n':
			line++
		case c == '/' && i+1 < len(content) && content[i+1] == '/':
			for i < len(content) && content[i] != '\n' {
				i++
			}
			line++
		case c == '/' && i+1 < len(content) && content[i+1] == '*':
			end := strings.Index(content[i+2:], "*/")
			if end < 0 {
				return fmt.Errorf("unterminated comment starting on line %d", line)
			}
			line += strings.Count(content[i:i+2+end], "\n")
			i += end + 3
		case c == 'r' && startsToken(content, i) && i+1 < len(content) && (content[i+1] == '"' || content[i+1] == '#'):
			j := i + 1
			for j < len(content) && content[j] == '#' {
				j++
			}
			if j >= len(content) || content[j] != '"' {
				continue
			}
			closing := "\"" + strings.Repeat("#", j-i-1)
			end := strings.Index(content[j+1:], closing)
			if end < 0 {
				return fmt.Errorf("unterminated raw string on line %d", line)
			}
			line += strings.Count(content[i:j+1+end], "\n")
			i = j + end + len(closing)
		case c == '"':
			start := line
			i++
			for ; i < len(content) && content[i] != '"'; i++ {
				switch content[i] {
				case '\\':
					i++
				case '\n':
					line++
				}
			}
			if i >= len(content) {
				return fmt.Errorf("unterminated string on line %d", start)
			}
		case c == '{':
			opened = append(opened, line)
		case c == '}':
			if len(opened) == 0 {
				return fmt.Errorf("unexpected '}' on line %d", line)
			}
			opened = opened[:len(opened)-1]
		}
	}
	if len(opened) > 0 {
		return fmt.Errorf("block opened on line %d is never closed", opened[len(opened)-1])
	}
	return nil
}

func startsToken(content string, i int) bool {
	if i == 0 {
		return true
	}
	return strings.IndexByte(" \t\r\n;{(=", content[i-1]) >= 0
}

func parseFilterSection(cfg *Config, n *document.Node) error {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "source_extensions":
			cfg.Filter.SourceExtensions = collectStringArgs(cn)
		case "exclusion_suffixes":
			cfg.Filter.ExclusionSuffixes = collectStringArgs(cn)
		case "exclusion_paths":
			cfg.Filter.ExclusionPaths = collectStringArgs(cn)
		case "keyword":
			if s, ok := firstStringArg(cn); ok {
				cfg.Filter.Keyword = s
			}
		case "pattern":
			if s, ok := firstStringArg(cn); ok {
				cfg.Filter.Pattern = s
			}
		case "strict_keyword":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Filter.StrictKeyword = b
			}
		case "skip_binary":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Filter.SkipBinary = b
			}
		}
	}
	return nil
}

func parseScanSection(cfg *Config, n *document.Node) error {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Scan.Workers = v
			}
		case "fail_fast":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Scan.FailFast = b
			}
		case "ordered":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Scan.Ordered = b
			}
		case "file_timeout_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Scan.FileTimeoutMs = v
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Scan.RespectGitignore = b
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Scan.FollowSymlinks = b
			}
		case "max_file_size":
			// Accepts a byte count or a size string like "10MB"
			if v, ok := firstIntArg(cn); ok {
				cfg.Scan.MaxFileSize = int64(v)
			} else if s, ok := firstStringArg(cn); ok {
				size, err := parseSize(s)
				if err != nil {
					return fmt.Errorf("scan.max_file_size: invalid size %q: %w", s, err)
				}
				cfg.Scan.MaxFileSize = size
			}
		case "watch_debounce_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Scan.WatchDebounceMs = v
			}
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs supports both the inline form (exclude "a" "b") and the block
// form (exclude { "a"; "b" }) where each string is a child node name
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
