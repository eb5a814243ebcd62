package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/standardbeagle/declscan/internal/ast"
	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/filter"
)

// stubParser turns "class Name" lines into class declarations and fails on any
// content containing "syntax error".
type stubParser struct {
	parse func(ctx context.Context, path string, content []byte) (*ast.RawNode, error)
}

func (p *stubParser) Name() string { return "stub" }

func (p *stubParser) Parse(ctx context.Context, path string, content []byte) (*ast.RawNode, error) {
	if p.parse != nil {
		return p.parse(ctx, path, content)
	}
	return parseClasses(path, content)
}

func parseClasses(path string, content []byte) (*ast.RawNode, error) {
	text := string(content)
	if strings.Contains(text, "syntax error") {
		return nil, declerrors.NewParseError(path, "stub", errors.New("unexpected token")).WithPosition(1, 1)
	}
	root := &ast.RawNode{Kind: ast.RawSourceFile}
	for _, line := range strings.Split(text, "\n") {
		if name, ok := strings.CutPrefix(strings.TrimSpace(line), "class "); ok {
			root.Children = append(root.Children, &ast.RawNode{Kind: ast.RawClass, Name: ast.Str(name)})
		}
	}
	return root, nil
}

// classNames is an ExtractFunc listing the top-level class names
func classNames(_ context.Context, _ string, root *ast.Node) ([]string, error) {
	var names []string
	for _, c := range root.FilterSubstructure(ast.KindClass, false) {
		name, err := c.Name()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func swiftChain(t *testing.T) *filter.Chain {
	t.Helper()
	return filter.NewChain(
		filter.NewSourcePathFilter([]string{".swift"}, nil, nil),
		filter.BinaryContentFilter{},
	)
}

// memoryFiles serves file contents from a map, counting reads per path
type memoryFiles struct {
	files map[string]string

	mu    sync.Mutex
	reads map[string]int
}

func newMemoryFiles(files map[string]string) *memoryFiles {
	return &memoryFiles{files: files, reads: make(map[string]int)}
}

func (m *memoryFiles) read(path string) ([]byte, error) {
	m.mu.Lock()
	m.reads[path]++
	m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return []byte(content), nil
}

func (m *memoryFiles) readCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[path]
}
