package parser

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/declscan/internal/ast"
	declerrors "github.com/standardbeagle/declscan/internal/errors"
)

const javaSource = `package demo;

public class RootComponent extends Component<EmptyDependency> implements Scoped, Named {
    private int count;
    static final String NAME = "root", ALT = "alt";

    @Override
    public String toString() {
        return helper.describe(count);
    }

    public void reset(int value, String label) {
        this.count = value;
        log(label);
        new StringBuilder();
    }
}

interface Scoped extends Named {
    void scope();
}
`

const goSource = `package shapes

import "fmt"

var Registry = map[string]Shape{}

const Pi, Tau = 3.14, 6.28

type Shape interface {
	fmt.Stringer
	Area() float64
}

type Square struct {
	Base
	*Named
	Side, Depth float64
}

func (s *Square) Area() float64 {
	return s.Side * s.Side
}

func (s *Square) String() string {
	return fmt.Sprintf("square %v", s.Area())
}

func New(side float64) *Square {
	return &Square{Side: side}
}
`

const pythonSource = `from typing import Protocol, override

VERSION: str = "1.0"
registry = dict()


class Greeter(Protocol):
    def greet(self, name: str) -> str: ...


class Base:
    def greet(self, name):
        return name


class Loud(Base, metaclass=Meta):
    volume = 11

    @override
    def greet(self, name: str, *args, times=2) -> str:
        return name.upper() * times

    @staticmethod
    def build():
        return Loud()
`

func parseTree(t *testing.T, d *Dialect, path, src string) *ast.Node {
	t.Helper()
	raw, err := NewTreeSitterParser(d).Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	root, err := ast.NewTree(raw)
	require.NoError(t, err)
	return root
}

func names(t *testing.T, nodes []*ast.Node) []string {
	t.Helper()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		name, err := n.Name()
		require.NoError(t, err)
		out[i] = name
	}
	return out
}

func TestJavaDialect(t *testing.T) {
	root := parseTree(t, Java, "RootComponent.java", javaSource)

	summary, err := ast.Summarize(root)
	require.NoError(t, err)
	require.Len(t, summary.Types, 2)

	rc := summary.Types[0]
	assert.Equal(t, ast.KindClass, rc.Kind)
	assert.Equal(t, "RootComponent", rc.Name)
	assert.Equal(t, []string{"Component<EmptyDependency>", "Scoped", "Named"}, rc.Signatures)
	assert.Equal(t, []string{"Component", "Scoped", "Named"}, rc.Inherits)
	assert.Equal(t, []ast.Member{
		{Name: "count", Type: "int"},
		{Name: "NAME", Type: "String"},
		{Name: "ALT", Type: "String"},
	}, rc.Properties)
	assert.Equal(t, []ast.Member{
		{Name: "toString", Type: "String", Override: true},
		{Name: "reset"},
	}, rc.Methods)
	assert.Equal(t, []string{"StringBuilder", "helper.describe", "log"}, rc.Calls)

	scoped := summary.Types[1]
	assert.Equal(t, ast.KindProtocol, scoped.Kind)
	assert.Equal(t, []string{"Named"}, scoped.Inherits)
	assert.Equal(t, []ast.Member{{Name: "scope"}}, scoped.Methods)

	class := root.Children()[0]
	reset := class.FilterSubstructure(ast.KindMethod, false)[1]
	assert.Equal(t, []string{"value", "label"}, names(t, reset.FilterSubstructure(ast.KindParameter, false)))
	static := class.FilterRawKind(ast.RawVarStatic, false)
	assert.Equal(t, []string{"NAME", "ALT"}, names(t, static))
}

func TestGoDialect(t *testing.T) {
	root := parseTree(t, Go, "shapes.go", goSource)

	var kinds []string
	for _, c := range root.Children() {
		kinds = append(kinds, c.RawKind())
	}
	assert.Equal(t, []string{
		ast.RawVarGlobal, ast.RawVarGlobal, ast.RawVarGlobal,
		ast.RawProtocol, ast.RawStruct,
		ast.RawMethod, ast.RawMethod, ast.RawFunction,
	}, kinds)
	assert.Equal(t, []string{"Registry", "Pi", "Tau", "Shape", "Square", "Area", "String", "New"}, names(t, root.Children()))

	summary, err := ast.Summarize(root)
	require.NoError(t, err)
	require.Len(t, summary.Types, 2)

	shape := summary.Types[0]
	assert.Equal(t, ast.KindProtocol, shape.Kind)
	assert.Equal(t, []string{"fmt.Stringer"}, shape.Inherits)
	assert.Equal(t, []ast.Member{{Name: "Area", Type: "float64"}}, shape.Methods)

	square := summary.Types[1]
	assert.Equal(t, ast.KindStruct, square.Kind)
	assert.Equal(t, []string{"Base", "Named"}, square.Inherits)
	assert.Equal(t, []ast.Member{{Name: "Side", Type: "float64"}, {Name: "Depth", Type: "float64"}}, square.Properties)

	assert.Equal(t, []string{"Registry", "Pi", "Tau"}, memberNames(summary.GlobalProperties))
	assert.Equal(t, []string{"fmt.Sprintf", "s.Area"}, summary.Calls)

	newFn := root.Children()[7]
	typ, ok := newFn.ReturnType()
	require.True(t, ok)
	assert.Equal(t, "*Square", typ)
	assert.Equal(t, []string{"side"}, names(t, newFn.FilterSubstructure(ast.KindParameter, false)))

	area := root.Children()[5]
	assert.Empty(t, area.FilterSubstructure(ast.KindParameter, false), "receiver is not a parameter")
}

func TestPythonDialect(t *testing.T) {
	root := parseTree(t, Python, "greeters.py", pythonSource)

	summary, err := ast.Summarize(root)
	require.NoError(t, err)
	require.Len(t, summary.Types, 3)

	greeter := summary.Types[0]
	assert.Equal(t, ast.KindProtocol, greeter.Kind)
	assert.Equal(t, []ast.Member{{Name: "greet", Type: "str"}}, greeter.Methods)

	loud := summary.Types[2]
	assert.Equal(t, ast.KindClass, loud.Kind)
	assert.Equal(t, []string{"Base"}, loud.Inherits)
	assert.Equal(t, []ast.Member{{Name: "volume"}}, loud.Properties)
	assert.Equal(t, []ast.Member{
		{Name: "greet", Type: "str", Override: true},
		{Name: "build"},
	}, loud.Methods)
	assert.Equal(t, []string{"Loud", "name.upper"}, loud.Calls)

	assert.Equal(t, []ast.Member{{Name: "VERSION", Type: "str"}, {Name: "registry"}}, summary.GlobalProperties)

	classes := root.FilterSubstructure(ast.KindClass, false)
	require.Len(t, classes, 2, "Protocol subclasses are not classes")
	protocols := root.FilterSubstructure(ast.KindProtocol, false)
	require.Len(t, protocols, 1)
	assert.Equal(t, []string{"Base", "Loud"}, names(t, classes))

	loudNode := classes[1]
	greet := loudNode.FilterSubstructure(ast.KindMethod, false)[0]
	assert.Equal(t, []string{"name", "args", "times"}, names(t, greet.FilterSubstructure(ast.KindParameter, false)))

	build := loudNode.FilterSubstructure(ast.KindMethod, false)[1]
	assert.Equal(t, ast.RawMethodStatic, build.RawKind())
}

func TestTreeSitterSyntaxError(t *testing.T) {
	p := NewTreeSitterParser(Java)
	_, err := p.Parse(context.Background(), "Broken.java", []byte("class Broken {\n  void x( {\n}\n"))

	var parseErr *declerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "tree-sitter-java", parseErr.Parser)
	assert.Equal(t, "Broken.java", parseErr.FilePath)
	assert.GreaterOrEqual(t, parseErr.Line, 1)
}

func TestTreeSitterCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTreeSitterParser(Go).Parse(ctx, "a.go", []byte(goSource))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTreeSitterConcurrentParses(t *testing.T) {
	p := NewTreeSitterParser(Go)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, err := p.Parse(context.Background(), "shapes.go", []byte(goSource))
			if err == nil && len(raw.Children) != 8 {
				err = errors.New("unexpected tree")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestTreeSitterIdleParsersAreBounded(t *testing.T) {
	p := NewTreeSitterParserSize(Go, 2)
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Parse(context.Background(), "shapes.go", []byte(goSource))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, p.Idle(), 1)
	assert.LessOrEqual(t, p.Idle(), 2)
	require.NoError(t, p.Close())
	assert.Zero(t, p.Idle())
}

func memberNames(members []ast.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}
