package parser

import (
	"slices"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/standardbeagle/declscan/internal/ast"
)

// Java maps classes, interfaces, records, methods, fields and calls.
var Java = &Dialect{
	Name:       "java",
	Extensions: []string{".java"},
	language:   tree_sitter_java.Language,
	classify:   classifyJava,
}

func classifyJava(c *converter, n *tree_sitter.Node, parent *ast.RawNode, s scope) visit {
	switch n.Kind() {
	case "class_declaration", "interface_declaration", "record_declaration", "enum_declaration":
		kind := map[string]string{
			"class_declaration":     ast.RawClass,
			"interface_declaration": ast.RawProtocol,
			"record_declaration":    ast.RawStruct,
			"enum_declaration":      ast.RawEnum,
		}[n.Kind()]
		raw := rawNode(kind, c.fieldText(n, "name"))
		raw.InheritedTypes = javaSupertypes(c, n)
		return declare(scopeType, raw)

	case "method_declaration":
		raw := rawNode(ast.RawMethod, c.fieldText(n, "name"))
		modifiers := javaModifiers(c, n)
		if slices.Contains(modifiers, "static") {
			raw.Kind = ast.RawMethodStatic
		}
		if slices.Contains(modifiers, "@Override") {
			raw.Attributes = append(raw.Attributes, ast.Attribute{Name: ast.AttributeOverride})
		}
		if t := n.ChildByFieldName("type"); t != nil && t.Kind() != "void_type" {
			withType(raw, c.compactText(t))
		}
		return declare(scopeFunction, raw)

	case "constructor_declaration":
		return declare(scopeFunction, rawNode(ast.RawConstructor, c.fieldText(n, "name")))

	case "formal_parameter":
		raw := withType(rawNode(ast.RawParameter, c.fieldText(n, "name")), c.compactText(n.ChildByFieldName("type")))
		return visit{nodes: []*ast.RawNode{raw}, skip: true}

	case "field_declaration", "constant_declaration":
		if s != scopeType {
			return flatten(s)
		}
		kind := ast.RawVarInstance
		if n.Kind() == "constant_declaration" || slices.Contains(javaModifiers(c, n), "static") {
			kind = ast.RawVarStatic
		}
		typeName := c.compactText(n.ChildByFieldName("type"))
		var vars []*ast.RawNode
		for _, d := range namedChildren(n, "variable_declarator") {
			vars = append(vars, withType(rawNode(kind, c.fieldText(d, "name")), typeName))
		}
		if len(vars) == 0 {
			return flatten(s)
		}
		return declare(scopeFunction, vars...)

	case "method_invocation":
		name := c.fieldText(n, "name")
		if obj := n.ChildByFieldName("object"); obj != nil {
			name = c.compactText(obj) + "." + name
		}
		return declare(s, rawNode(ast.RawCall, name))

	case "object_creation_expression":
		return declare(s, rawNode(ast.RawCall, c.compactText(n.ChildByFieldName("type"))))
	}
	return flatten(s)
}

// javaSupertypes collects the extends and implements clauses of a type declaration
func javaSupertypes(c *converter, n *tree_sitter.Node) []ast.InheritedType {
	var out []ast.InheritedType
	for _, clause := range namedChildren(n, "superclass", "super_interfaces", "extends_interfaces") {
		for _, t := range javaTypeList(clause) {
			out = append(out, ast.InheritedType{Name: c.text(t)})
		}
	}
	return out
}

func javaTypeList(clause *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	count := clause.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := clause.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "type_list" {
			out = append(out, javaTypeList(child)...)
			continue
		}
		out = append(out, child)
	}
	return out
}

// javaModifiers returns the modifier keywords and annotations of a declaration
func javaModifiers(c *converter, n *tree_sitter.Node) []string {
	mods := namedChildren(n, "modifiers")
	if len(mods) == 0 {
		return nil
	}
	var out []string
	for _, word := range strings.Fields(c.text(mods[0])) {
		if name, _, found := strings.Cut(word, "("); found {
			word = name
		}
		out = append(out, word)
	}
	return out
}
