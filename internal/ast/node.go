// Package ast adapts the raw trees produced by parser front ends into a typed,
// read-only view of declarations.
package ast

import (
	"slices"
	"strings"
	"unicode"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
)

// Node is the read-only view of one RawNode. Nodes are created by NewTree and are
// meant to be used by a single goroutine for the extraction of one file.
type Node struct {
	raw      *RawNode
	kind     Kind
	children []*Node
	built    bool
}

// NewTree validates raw and returns the adapter for its root. Every node needs a kind,
// except the root, and every node of a known kind needs a name.
func NewTree(raw *RawNode) (*Node, error) {
	if raw == nil {
		return nil, declerrors.NewMalformedTreeError("root", "")
	}
	if err := validate(raw); err != nil {
		return nil, err
	}
	return wrap(raw), nil
}

func validate(root *RawNode) error {
	stack := []*RawNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n != root && n.Kind == "" {
			return declerrors.NewMalformedTreeError("key.kind", "")
		}
		if Classify(n.Kind) != KindUnknown && n.Name == nil {
			return declerrors.NewMalformedTreeError("key.name", n.Kind)
		}
		for _, c := range n.Children {
			if c == nil {
				return declerrors.NewMalformedTreeError("key.substructure", n.Kind)
			}
			stack = append(stack, c)
		}
	}
	return nil
}

func wrap(raw *RawNode) *Node {
	return &Node{raw: raw, kind: Classify(raw.Kind)}
}

// Raw returns the underlying raw node. It must not be modified.
func (n *Node) Raw() *RawNode {
	return n.raw
}

func (n *Node) Kind() Kind {
	return n.kind
}

// RawKind is the parser's own kind identifier
func (n *Node) RawKind() string {
	return n.raw.Kind
}

// Name returns the declared name. A node without one yields a MalformedTreeError.
func (n *Node) Name() (string, error) {
	if n.raw.Name == nil {
		return "", declerrors.NewMalformedTreeError("key.name", n.raw.Kind)
	}
	return *n.raw.Name, nil
}

// ReturnType returns the declared type of a property or the return type of a method.
// Void methods have none.
func (n *Node) ReturnType() (string, bool) {
	if n.raw.TypeName == nil || *n.raw.TypeName == "" {
		return "", false
	}
	return *n.raw.TypeName, true
}

// InheritedTypeSignatures returns the inheritance clause entries with all whitespace
// removed, e.g. "SuperClass<Blah,Foo,Bar>".
func (n *Node) InheritedTypeSignatures() []string {
	sigs := make([]string, 0, len(n.raw.InheritedTypes))
	for _, t := range n.raw.InheritedTypes {
		sigs = append(sigs, stripSpace(t.Name))
	}
	return sigs
}

// InheritedTypeNames returns the inherited type names without generic arguments.
func (n *Node) InheritedTypeNames() []string {
	sigs := n.InheritedTypeSignatures()
	for i, sig := range sigs {
		if name, _, found := strings.Cut(sig, "<"); found {
			sigs[i] = name
		}
	}
	return sigs
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Children returns the child nodes in source order. They are built on first use.
func (n *Node) Children() []*Node {
	if !n.built {
		n.children = make([]*Node, len(n.raw.Children))
		for i, c := range n.raw.Children {
			n.children[i] = wrap(c)
		}
		n.built = true
	}
	return n.children
}

// FirstChild returns the first direct child of the given kind
func (n *Node) FirstChild(kind Kind) (*Node, bool) {
	for _, c := range n.Children() {
		if c.kind == kind {
			return c, true
		}
	}
	return nil, false
}

// IsExpressionCall reports whether the node is a call expression
func (n *Node) IsExpressionCall() bool {
	return n.kind == KindExpressionCall
}

// IsOverride reports whether the declaration carries an override attribute
func (n *Node) IsOverride() bool {
	for _, a := range n.raw.Attributes {
		if a.Name == SourceKitAttributeOverride || a.Name == AttributeOverride {
			return true
		}
	}
	return false
}

// FilterSubstructure returns the descendants of the given kind. Without recursion only
// direct children are considered. With recursion the direct matches come first,
// followed by the recursive matches of each child in order.
func (n *Node) FilterSubstructure(kind Kind, recursively bool) []*Node {
	return n.filter(func(c *Node) bool { return c.kind == kind }, recursively)
}

// FilterRawKind is FilterSubstructure keyed by the parser's raw kind identifier.
func (n *Node) FilterRawKind(rawKind string, recursively bool) []*Node {
	return n.filter(func(c *Node) bool { return c.raw.Kind == rawKind }, recursively)
}

func (n *Node) filter(match func(*Node) bool, recursively bool) []*Node {
	var out []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := cur.Children()
		for _, c := range children {
			if match(c) {
				out = append(out, c)
			}
		}
		if !recursively {
			break
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// UniqueExpressionCallNames returns the names of all call expressions below the node,
// sorted and without duplicates.
func (n *Node) UniqueExpressionCallNames() []string {
	calls := n.FilterSubstructure(KindExpressionCall, true)
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		if c.raw.Name != nil {
			names = append(names, *c.raw.Name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}
