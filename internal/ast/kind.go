package ast

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Kind is the normalized declaration kind of a node.
type Kind int

const (
	KindUnknown Kind = iota
	KindClass
	KindStruct
	KindProtocol
	KindMethod
	KindExpressionCall
	KindParameter
	KindProperty
	KindGlobalProperty
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindClass:          "class",
	KindStruct:         "struct",
	KindProtocol:       "protocol",
	KindMethod:         "method",
	KindExpressionCall: "expressionCall",
	KindParameter:      "parameter",
	KindProperty:       "property",
	KindGlobalProperty: "globalProperty",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// MarshalText lets kinds appear by name in JSON output
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names MarshalText produces
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown declaration kind %q", text)
}

// Kinds lists every kind in declaration order
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Raw kind identifiers. SourceKit identifiers come from sourcekitten structure dumps;
// the short identifiers are emitted by the tree-sitter dialects.
const (
	RawClass          = "class"
	RawStruct         = "struct"
	RawProtocol       = "protocol"
	RawEnum           = "enum"
	RawMethod         = "method"
	RawMethodStatic   = "method-static"
	RawMethodClass    = "method-class"
	RawConstructor    = "constructor"
	RawFunction       = "function"
	RawCall           = "call"
	RawParameter      = "parameter"
	RawVarInstance    = "var-instance"
	RawVarStatic      = "var-static"
	RawVarClass       = "var-class"
	RawVarGlobal      = "var-global"
	RawVarLocal       = "var-local"
	RawSourceFile     = "source-file"
	RawSourceKitCall  = "source.lang.swift.expr.call"
	sourceKitDeclRoot = "source.lang.swift.decl."
)

var kindTableEntries = map[Kind][]string{
	KindClass:          {RawClass, sourceKitDeclRoot + "class"},
	KindStruct:         {RawStruct, sourceKitDeclRoot + "struct"},
	KindProtocol:       {RawProtocol, sourceKitDeclRoot + "protocol"},
	KindExpressionCall: {RawCall, RawSourceKitCall},
	KindParameter:      {RawParameter, sourceKitDeclRoot + "var.parameter"},
	KindGlobalProperty: {RawVarGlobal, sourceKitDeclRoot + "var.global"},
	KindMethod: {
		RawMethod, RawMethodStatic, RawMethodClass,
		sourceKitDeclRoot + "function.method.instance",
		sourceKitDeclRoot + "function.method.static",
		sourceKitDeclRoot + "function.method.class",
	},
	KindProperty: {
		RawVarInstance, RawVarStatic, RawVarClass,
		sourceKitDeclRoot + "var.instance",
		sourceKitDeclRoot + "var.static",
		sourceKitDeclRoot + "var.class",
	},
}

var (
	kindTableOnce sync.Once
	kindTable     map[string]Kind
)

// KindTable returns a copy of the raw identifier to Kind mapping. Identifiers missing
// from the table classify as KindUnknown.
func KindTable() map[string]Kind {
	return maps.Clone(table())
}

// Classify maps a raw kind identifier to its Kind
func Classify(raw string) Kind {
	return table()[raw]
}

func table() map[string]Kind {
	kindTableOnce.Do(func() {
		kindTable = make(map[string]Kind)
		for kind, raws := range kindTableEntries {
			for _, raw := range raws {
				kindTable[raw] = kind
			}
		}
	})
	return kindTable
}

// RawKindsFor returns the sorted raw identifiers that classify as k
func RawKindsFor(k Kind) []string {
	raws := slices.Clone(kindTableEntries[k])
	slices.Sort(raws)
	return raws
}
