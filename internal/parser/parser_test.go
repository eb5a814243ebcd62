package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/declscan/internal/ast"
)

type stubParser struct {
	name string
}

func (s stubParser) Name() string { return s.name }

func (s stubParser) Parse(context.Context, string, []byte) (*ast.RawNode, error) {
	return &ast.RawNode{Kind: s.name}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(stubParser{"swift"}, ".swift")
	r.Register(stubParser{"kotlin"}, "kt", ".KTS")

	p, ok := r.Lookup("Sources/App/Main.swift")
	require.True(t, ok)
	assert.Equal(t, "swift", p.Name())

	p, ok = r.Lookup("build.gradle.kts")
	require.True(t, ok)
	assert.Equal(t, "kotlin", p.Name())

	_, ok = r.Lookup("README.md")
	assert.False(t, ok)

	assert.Equal(t, []string{".kt", ".kts", ".swift"}, r.Extensions())

	raw, err := r.Parse(context.Background(), "Main.kt", nil)
	require.NoError(t, err)
	assert.Equal(t, "kotlin", raw.Kind)

	_, err = r.Parse(context.Background(), "notes.txt", nil)
	var unsupported *UnsupportedError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "notes.txt", unsupported.Path)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(NewSourceKitParser("", 0), 2)
	assert.Equal(t, []string{".go", ".java", ".py", ".pyi", ".swift"}, r.Extensions())

	p, ok := r.Lookup("Main.java")
	require.True(t, ok)
	assert.Equal(t, "tree-sitter-java", p.Name())

	r = DefaultRegistry(nil, 0)
	_, ok = r.Lookup("Main.swift")
	assert.False(t, ok)
}

func TestRegistryCloseReleasesTreeSitterParsers(t *testing.T) {
	r := DefaultRegistry(nil, 2)
	_, err := r.Parse(context.Background(), "Main.java", []byte("class Main {}"))
	require.NoError(t, err)

	p, ok := r.Lookup("Main.java")
	require.True(t, ok)
	ts := p.(*TreeSitterParser)
	assert.Equal(t, 1, ts.Idle())

	require.NoError(t, r.Close())
	assert.Zero(t, ts.Idle())

	// parsing still works after close, without keeping parsers around
	_, err = r.Parse(context.Background(), "Main.java", []byte("class Main {}"))
	require.NoError(t, err)
	assert.Zero(t, ts.Idle())
}
