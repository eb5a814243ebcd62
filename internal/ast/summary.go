package ast

// FileSummary is a flat, serializable view of the declarations in one file.
type FileSummary struct {
	Types            []TypeSummary `json:"types,omitempty"`
	GlobalProperties []Member      `json:"globalProperties,omitempty"`
	Calls            []string      `json:"calls,omitempty"`
}

// TypeSummary describes a class, struct or protocol, including nested ones.
type TypeSummary struct {
	Kind       Kind     `json:"kind"`
	Name       string   `json:"name"`
	Inherits   []string `json:"inherits,omitempty"`
	Signatures []string `json:"inheritedSignatures,omitempty"`
	Properties []Member `json:"properties,omitempty"`
	Methods    []Member `json:"methods,omitempty"`
	Calls      []string `json:"calls,omitempty"`
}

// Member is a property or method. Type is the property type or the method's return type.
type Member struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Override bool   `json:"override,omitempty"`
}

// Summarize collects the declarations below root. Types are listed in depth-first order.
func Summarize(root *Node) (FileSummary, error) {
	var summary FileSummary

	for _, t := range root.filter(isTypeDecl, true) {
		ts, err := summarizeType(t)
		if err != nil {
			return FileSummary{}, err
		}
		summary.Types = append(summary.Types, ts)
	}

	for _, g := range root.FilterSubstructure(KindGlobalProperty, false) {
		m, err := member(g)
		if err != nil {
			return FileSummary{}, err
		}
		summary.GlobalProperties = append(summary.GlobalProperties, m)
	}

	summary.Calls = root.UniqueExpressionCallNames()
	return summary, nil
}

func isTypeDecl(n *Node) bool {
	switch n.kind {
	case KindClass, KindStruct, KindProtocol:
		return true
	}
	return false
}

func summarizeType(t *Node) (TypeSummary, error) {
	name, err := t.Name()
	if err != nil {
		return TypeSummary{}, err
	}
	ts := TypeSummary{
		Kind:       t.Kind(),
		Name:       name,
		Inherits:   t.InheritedTypeNames(),
		Signatures: t.InheritedTypeSignatures(),
		Calls:      t.UniqueExpressionCallNames(),
	}
	for _, c := range t.Children() {
		switch c.Kind() {
		case KindProperty:
			m, err := member(c)
			if err != nil {
				return TypeSummary{}, err
			}
			ts.Properties = append(ts.Properties, m)
		case KindMethod:
			m, err := member(c)
			if err != nil {
				return TypeSummary{}, err
			}
			ts.Methods = append(ts.Methods, m)
		}
	}
	return ts, nil
}

func member(n *Node) (Member, error) {
	name, err := n.Name()
	if err != nil {
		return Member{}, err
	}
	typ, _ := n.ReturnType()
	return Member{Name: name, Type: typ, Override: n.IsOverride()}, nil
}
