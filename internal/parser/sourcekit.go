package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/standardbeagle/declscan/internal/ast"
)

const (
	// DefaultSourceKittenBinary is looked up on PATH
	DefaultSourceKittenBinary = "sourcekitten"
	// DefaultSourceKittenTimeout bounds a single structure request
	DefaultSourceKittenTimeout = 30 * time.Second
)

// SourceKitParser parses Swift through `sourcekitten structure`. The tool needs a file
// on disk, so content is written to a temporary file first: the parser must see the
// bytes the filters accepted, not whatever is on disk now.
type SourceKitParser struct {
	Binary  string
	Timeout time.Duration
	TempDir string
}

// NewSourceKitParser creates a parser. Empty values select the defaults.
func NewSourceKitParser(binary string, timeout time.Duration) *SourceKitParser {
	if binary == "" {
		binary = DefaultSourceKittenBinary
	}
	if timeout <= 0 {
		timeout = DefaultSourceKittenTimeout
	}
	return &SourceKitParser{Binary: binary, Timeout: timeout}
}

func (p *SourceKitParser) Name() string { return "sourcekitten" }

// Available reports whether the sourcekitten binary can be found
func (p *SourceKitParser) Available() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

// Parse implements Parser
func (p *SourceKitParser) Parse(ctx context.Context, path string, content []byte) (*ast.RawNode, error) {
	tmp, err := os.CreateTemp(p.TempDir, "declscan-*"+filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, p.Binary, "structure", "--file", tmp.Name())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := execCtx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("sourcekitten interrupted: %w", ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("sourcekitten error: %s", msg)
		}
		return nil, fmt.Errorf("sourcekitten failed: %w", err)
	}

	return DecodeStructure(&stdout)
}

// DecodeStructure reads a `sourcekitten structure` JSON dump.
func DecodeStructure(r io.Reader) (*ast.RawNode, error) {
	var root ast.RawNode
	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty structure output")
		}
		return nil, fmt.Errorf("invalid structure output: %w", err)
	}
	return &root, nil
}
