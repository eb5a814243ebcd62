package parser

import (
	"slices"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/declscan/internal/ast"
)

// Python maps classes, functions, methods, module and class attributes, and calls.
// Classes deriving from Protocol are reported as protocols.
var Python = &Dialect{
	Name:       "python",
	Extensions: []string{".py", ".pyi"},
	language:   tree_sitter_python.Language,
	classify:   classifyPython,
}

func classifyPython(c *converter, n *tree_sitter.Node, parent *ast.RawNode, s scope) visit {
	switch n.Kind() {
	case "class_definition":
		raw := rawNode(ast.RawClass, c.fieldText(n, "name"))
		if supers := n.ChildByFieldName("superclasses"); supers != nil {
			count := supers.NamedChildCount()
			for i := uint(0); i < count; i++ {
				arg := supers.NamedChild(i)
				if arg == nil || arg.Kind() == "keyword_argument" {
					continue
				}
				name := c.compactText(arg)
				raw.InheritedTypes = append(raw.InheritedTypes, ast.InheritedType{Name: name})
				if name == "Protocol" || name == "typing.Protocol" || strings.HasPrefix(name, "Protocol[") {
					raw.Kind = ast.RawProtocol
				}
			}
		}
		c.field(n, "body", raw, scopeType)
		return visit{nodes: []*ast.RawNode{raw}, skip: true}

	case "function_definition":
		kind := ast.RawFunction
		decorators := pythonDecorators(c, n)
		if s == scopeType {
			kind = ast.RawMethod
			if slices.Contains(decorators, "staticmethod") {
				kind = ast.RawMethodStatic
			} else if slices.Contains(decorators, "classmethod") {
				kind = ast.RawMethodClass
			}
		}
		raw := withType(rawNode(kind, c.fieldText(n, "name")), c.compactText(n.ChildByFieldName("return_type")))
		if slices.Contains(decorators, "override") || slices.Contains(decorators, "typing.override") {
			raw.Attributes = append(raw.Attributes, ast.Attribute{Name: ast.AttributeOverride})
		}
		if params := n.ChildByFieldName("parameters"); params != nil {
			raw.Children = append(raw.Children, pythonParameters(c, params, kind == ast.RawMethod || kind == ast.RawMethodClass)...)
		}
		c.field(n, "body", raw, scopeFunction)
		return visit{nodes: []*ast.RawNode{raw}, skip: true}

	case "decorator":
		return visit{skip: true}

	case "assignment":
		if s == scopeFunction {
			return flatten(s)
		}
		left := n.ChildByFieldName("left")
		if left == nil || left.Kind() != "identifier" {
			return flatten(s)
		}
		kind := ast.RawVarGlobal
		if s == scopeType {
			kind = ast.RawVarInstance
		}
		raw := withType(rawNode(kind, c.text(left)), c.compactText(n.ChildByFieldName("type")))
		c.field(n, "right", raw, scopeFunction)
		return visit{nodes: []*ast.RawNode{raw}, skip: true}

	case "call":
		return declare(s, rawNode(ast.RawCall, c.compactText(n.ChildByFieldName("function"))))

	case "lambda":
		return flatten(scopeFunction)
	}
	return flatten(s)
}

// pythonDecorators returns the decorator expressions wrapping a definition, without "@"
// and call arguments
func pythonDecorators(c *converter, def *tree_sitter.Node) []string {
	wrapper := def.Parent()
	if wrapper == nil || wrapper.Kind() != "decorated_definition" {
		return nil
	}
	var out []string
	for _, d := range namedChildren(wrapper, "decorator") {
		text := strings.TrimPrefix(c.compactText(d), "@")
		if name, _, found := strings.Cut(text, "("); found {
			text = name
		}
		out = append(out, text)
	}
	return out
}

// pythonParameters converts a parameter list, dropping the implicit self or cls
// parameter of methods
func pythonParameters(c *converter, params *tree_sitter.Node, method bool) []*ast.RawNode {
	var out []*ast.RawNode
	count := params.NamedChildCount()
	for i := uint(0); i < count; i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		var name, typeName string
		switch p.Kind() {
		case "identifier":
			name = c.text(p)
		case "typed_parameter":
			if ids := namedChildren(p, "identifier"); len(ids) > 0 {
				name = c.text(ids[0])
			}
			typeName = c.compactText(p.ChildByFieldName("type"))
		case "default_parameter", "typed_default_parameter":
			name = c.fieldText(p, "name")
			typeName = c.compactText(p.ChildByFieldName("type"))
		case "list_splat_pattern", "dictionary_splat_pattern":
			if ids := namedChildren(p, "identifier"); len(ids) > 0 {
				name = c.text(ids[0])
			}
		}
		if name == "" {
			continue
		}
		if method && i == 0 && (name == "self" || name == "cls") {
			continue
		}
		raw := withType(rawNode(ast.RawParameter, name), typeName)
		raw.Offset = int(p.StartByte())
		raw.Length = int(p.EndByte() - p.StartByte())
		out = append(out, raw)
	}
	return out
}
