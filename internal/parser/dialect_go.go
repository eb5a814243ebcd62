package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/standardbeagle/declscan/internal/ast"
)

// Go maps struct and interface types, methods, package-level variables and calls.
// Embedded fields and embedded interfaces are reported as inherited types.
var Go = &Dialect{
	Name:       "go",
	Extensions: []string{".go"},
	language:   tree_sitter_go.Language,
	classify:   classifyGo,
}

func classifyGo(c *converter, n *tree_sitter.Node, parent *ast.RawNode, s scope) visit {
	switch n.Kind() {
	case "type_spec":
		name := c.fieldText(n, "name")
		t := n.ChildByFieldName("type")
		if t == nil {
			return flatten(s)
		}
		switch t.Kind() {
		case "struct_type":
			return declare(scopeType, rawNode(ast.RawStruct, name))
		case "interface_type":
			return declare(scopeType, rawNode(ast.RawProtocol, name))
		}
		return visit{nodes: []*ast.RawNode{rawNode("typealias", name)}, skip: true}

	case "field_declaration":
		names := namedChildren(n, "field_identifier")
		typeName := c.compactText(n.ChildByFieldName("type"))
		if len(names) == 0 {
			// embedded field
			parent.InheritedTypes = append(parent.InheritedTypes, ast.InheritedType{Name: strings.TrimPrefix(typeName, "*")})
			return visit{skip: true}
		}
		var vars []*ast.RawNode
		for _, id := range names {
			vars = append(vars, withType(rawNode(ast.RawVarInstance, c.text(id)), typeName))
		}
		return visit{nodes: vars, skip: true}

	case "type_elem":
		parent.InheritedTypes = append(parent.InheritedTypes, ast.InheritedType{Name: c.text(n)})
		return visit{skip: true}

	case "method_elem":
		raw := withType(rawNode(ast.RawMethod, c.fieldText(n, "name")), c.compactText(n.ChildByFieldName("result")))
		return declare(scopeFunction, raw)

	case "function_declaration":
		raw := withType(rawNode(ast.RawFunction, c.fieldText(n, "name")), c.compactText(n.ChildByFieldName("result")))
		return declare(scopeFunction, raw)

	case "method_declaration":
		raw := withType(rawNode(ast.RawMethod, c.fieldText(n, "name")), c.compactText(n.ChildByFieldName("result")))
		// the receiver is not a parameter
		c.field(n, "parameters", raw, scopeFunction)
		c.field(n, "body", raw, scopeFunction)
		return visit{nodes: []*ast.RawNode{raw}, skip: true}

	case "parameter_declaration", "variadic_parameter_declaration":
		typeName := c.compactText(n.ChildByFieldName("type"))
		var params []*ast.RawNode
		for _, id := range namedChildren(n, "identifier") {
			params = append(params, withType(rawNode(ast.RawParameter, c.text(id)), typeName))
		}
		return visit{nodes: params, skip: true}

	case "var_spec", "const_spec":
		if s != scopeFile {
			return flatten(s)
		}
		typeName := c.compactText(n.ChildByFieldName("type"))
		var vars []*ast.RawNode
		for _, id := range namedChildren(n, "identifier") {
			vars = append(vars, withType(rawNode(ast.RawVarGlobal, c.text(id)), typeName))
		}
		if len(vars) == 0 {
			return flatten(s)
		}
		if value := n.ChildByFieldName("value"); value != nil {
			c.collect(value, vars[0], scopeFunction)
		}
		return visit{nodes: vars, skip: true}

	case "call_expression":
		return declare(s, rawNode(ast.RawCall, c.compactText(n.ChildByFieldName("function"))))

	case "func_literal":
		return flatten(scopeFunction)
	}
	return flatten(s)
}
