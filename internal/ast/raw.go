package ast

// RawNode is one node of a parser front end's tree. Field names follow the
// sourcekitten structure dump so that dumps decode directly.
type RawNode struct {
	Kind           string          `json:"key.kind,omitempty"`
	Name           *string         `json:"key.name,omitempty"`
	TypeName       *string         `json:"key.typename,omitempty"`
	Children       []*RawNode      `json:"key.substructure,omitempty"`
	InheritedTypes []InheritedType `json:"key.inheritedtypes,omitempty"`
	Attributes     []Attribute     `json:"key.attributes,omitempty"`
	Offset         int             `json:"key.offset,omitempty"`
	Length         int             `json:"key.length,omitempty"`
}

// InheritedType is one entry of a declaration's inheritance clause, carrying the full
// signature as written (generic arguments included).
type InheritedType struct {
	Name string `json:"key.name"`
}

// Attribute is a declaration attribute such as source.decl.attribute.override.
type Attribute struct {
	Name string `json:"key.attribute"`
}

// Attribute identifiers recognized by IsOverride
const (
	AttributeOverride          = "override"
	SourceKitAttributeOverride = "source.decl.attribute.override"
)

// Str returns a pointer to s, for building RawNodes by hand
func Str(s string) *string {
	return &s
}
