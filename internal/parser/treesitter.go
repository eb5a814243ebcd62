package parser

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"unicode"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/declscan/internal/ast"
	declerrors "github.com/standardbeagle/declscan/internal/errors"
)

// Dialect maps one tree-sitter grammar onto raw declaration nodes.
type Dialect struct {
	Name       string
	Extensions []string
	language   func() unsafe.Pointer
	classify   classifyFunc
}

// scope is the syntactic context a node appears in.
type scope uint8

const (
	scopeFile scope = iota
	scopeType
	scopeFunction
)

// visit is a dialect's decision for one syntax node.
type visit struct {
	// declarations produced for the node; children attach to the first one
	nodes []*ast.RawNode
	// scope for the node's children
	scope scope
	// children were handled by the dialect or carry nothing of interest
	skip bool
}

type classifyFunc func(c *converter, n *tree_sitter.Node, parent *ast.RawNode, s scope) visit

func flatten(s scope) visit {
	return visit{scope: s}
}

func declare(s scope, nodes ...*ast.RawNode) visit {
	return visit{nodes: nodes, scope: s}
}

// TreeSitterParser parses one dialect with tree-sitter. Native parsers are not safe for
// concurrent use, so each Parse call borrows one from a bounded idle list; parsers
// returned to a full list, or after Close, are released immediately.
type TreeSitterParser struct {
	dialect  *Dialect
	language *tree_sitter.Language

	mu     sync.Mutex
	idle   []*tree_sitter.Parser
	limit  int
	closed bool
}

// NewTreeSitterParser creates a parser for the dialect keeping up to GOMAXPROCS native
// parsers idle.
func NewTreeSitterParser(d *Dialect) *TreeSitterParser {
	return NewTreeSitterParserSize(d, runtime.GOMAXPROCS(0))
}

// NewTreeSitterParserSize creates a parser keeping at most idle native parsers between
// calls; size it to the number of workers sharing it.
func NewTreeSitterParserSize(d *Dialect, idle int) *TreeSitterParser {
	return &TreeSitterParser{
		dialect:  d,
		language: tree_sitter.NewLanguage(d.language()),
		limit:    max(idle, 1),
	}
}

func (p *TreeSitterParser) acquire() (*tree_sitter.Parser, error) {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		parser := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return parser, nil
	}
	p.mu.Unlock()

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(p.language); err != nil {
		parser.Close()
		return nil, errors.Join(errors.New("tree-sitter language setup failed"), err)
	}
	return parser, nil
}

func (p *TreeSitterParser) release(parser *tree_sitter.Parser) {
	p.mu.Lock()
	if !p.closed && len(p.idle) < p.limit {
		p.idle = append(p.idle, parser)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	parser.Close()
}

// Idle returns how many native parsers are kept for reuse
func (p *TreeSitterParser) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Close releases the idle native parsers. Parsing after Close still works but no
// longer reuses parsers.
func (p *TreeSitterParser) Close() error {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()

	for _, parser := range idle {
		parser.Close()
	}
	return nil
}

func (p *TreeSitterParser) Name() string { return "tree-sitter-" + p.dialect.Name }

// Dialect returns the grammar mapping used by the parser
func (p *TreeSitterParser) Dialect() *Dialect {
	return p.dialect
}

// Parse implements Parser. Trees containing syntax errors are rejected.
func (p *TreeSitterParser) Parse(ctx context.Context, path string, content []byte) (*ast.RawNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser, err := p.acquire()
	if err != nil {
		return nil, err
	}
	defer p.release(parser)

	// tree-sitter may retain the buffer for the tree's lifetime
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := parser.Parse(buf, nil)
	if tree == nil {
		return nil, declerrors.NewParseError(path, p.Name(), errors.New("parser returned no tree"))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		perr := declerrors.NewParseError(path, p.Name(), errors.New("syntax error"))
		if bad := firstErrorNode(root); bad != nil {
			pos := bad.StartPosition()
			perr = perr.WithPosition(int(pos.Row)+1, int(pos.Column)+1)
		}
		return nil, perr
	}

	c := &converter{src: buf, dialect: p.dialect}
	raw := &ast.RawNode{Kind: ast.RawSourceFile, Offset: 0, Length: len(buf)}
	c.collect(root, raw, scopeFile)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return raw, nil
}

func firstErrorNode(root *tree_sitter.Node) *tree_sitter.Node {
	stack := []*tree_sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsError() || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			continue
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(uint(i)); child != nil {
				stack = append(stack, child)
			}
		}
	}
	return nil
}

// converter walks a syntax tree and hands every named node to the dialect.
type converter struct {
	src     []byte
	dialect *Dialect
}

func (c *converter) collect(n *tree_sitter.Node, parent *ast.RawNode, s scope) {
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		c.visit(child, parent, s)
	}
}

func (c *converter) visit(n *tree_sitter.Node, parent *ast.RawNode, s scope) {
	v := c.dialect.classify(c, n, parent, s)
	target := parent
	if len(v.nodes) > 0 {
		for _, raw := range v.nodes {
			if raw.Length == 0 {
				raw.Offset = int(n.StartByte())
				raw.Length = int(n.EndByte() - n.StartByte())
			}
		}
		parent.Children = append(parent.Children, v.nodes...)
		target = v.nodes[0]
	}
	if !v.skip {
		c.collect(n, target, v.scope)
	}
}

// field collects the named field of n below target
func (c *converter) field(n *tree_sitter.Node, name string, target *ast.RawNode, s scope) {
	if f := n.ChildByFieldName(name); f != nil {
		c.visit(f, target, s)
	}
}

func (c *converter) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(c.src)
}

// compactText is the node's source with all whitespace removed
func (c *converter) compactText(n *tree_sitter.Node) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, c.text(n))
}

func (c *converter) fieldText(n *tree_sitter.Node, name string) string {
	return c.text(n.ChildByFieldName(name))
}

// namedChildren returns the named children of n with the given kinds
func namedChildren(n *tree_sitter.Node, kinds ...string) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		for _, k := range kinds {
			if child.Kind() == k {
				out = append(out, child)
				break
			}
		}
	}
	return out
}

func rawNode(kind, name string) *ast.RawNode {
	return &ast.RawNode{Kind: kind, Name: ast.Str(name)}
}

func withType(raw *ast.RawNode, typeName string) *ast.RawNode {
	if typeName != "" {
		raw.TypeName = ast.Str(typeName)
	}
	return raw
}
