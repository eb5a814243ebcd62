package ast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{"source.lang.swift.decl.class", KindClass},
		{"source.lang.swift.decl.struct", KindStruct},
		{"source.lang.swift.decl.protocol", KindProtocol},
		{"source.lang.swift.decl.function.method.instance", KindMethod},
		{"source.lang.swift.decl.function.method.static", KindMethod},
		{"source.lang.swift.expr.call", KindExpressionCall},
		{"source.lang.swift.decl.var.parameter", KindParameter},
		{"source.lang.swift.decl.var.instance", KindProperty},
		{"source.lang.swift.decl.var.global", KindGlobalProperty},
		{"class", KindClass},
		{"var-instance", KindProperty},
		{"var-static", KindProperty},
		{"var-global", KindGlobalProperty},
		{"call", KindExpressionCall},
		{"method-static", KindMethod},
		{"source.lang.swift.decl.enum", KindUnknown},
		{"source.lang.swift.decl.extension", KindUnknown},
		{"function", KindUnknown},
		{"", KindUnknown},
		{"something.new", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestKindTableIsTotalAndConsistent(t *testing.T) {
	table := KindTable()
	for raw, kind := range table {
		assert.Equal(t, kind, Classify(raw))
		assert.Contains(t, RawKindsFor(kind), raw)
	}

	// callers get a copy
	table["class"] = KindStruct
	assert.Equal(t, KindClass, Classify("class"))

	assert.Empty(t, RawKindsFor(KindUnknown))
	assert.Equal(t, []string{"protocol", "source.lang.swift.decl.protocol"}, RawKindsFor(KindProtocol))
}

func TestKindText(t *testing.T) {
	assert.Equal(t, "expressionCall", KindExpressionCall.String())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Len(t, Kinds(), 9)

	data, err := json.Marshal(map[string]Kind{"k": KindGlobalProperty})
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"globalProperty"}`, string(data))

	var decoded map[string]Kind
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, KindGlobalProperty, decoded["k"])

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("enum")))
}
