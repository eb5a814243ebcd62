package ast

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
)

func TestSummarize(t *testing.T) {
	summary, err := Summarize(loadFixture(t, "types.json"))
	require.NoError(t, err)

	require.Len(t, summary.Types, 3)
	myClass := summary.Types[0]
	assert.Equal(t, KindClass, myClass.Kind)
	assert.Equal(t, "MyClass", myClass.Name)
	assert.Equal(t, []string{"SuperClass", "MyProtocol"}, myClass.Inherits)
	assert.Equal(t, []Member{{Name: "a"}, {Name: "myOtherProperty", Type: "Int"}}, myClass.Properties)
	assert.Equal(t, []Member{{Name: "myMethod(_:arg2:_:)", Type: "String"}, {Name: "voidReturnType()"}}, myClass.Methods)
	assert.Equal(t, []string{"String", "print", "someMethod"}, myClass.Calls)

	assert.Equal(t, "MyProtocol", summary.Types[1].Name)
	assert.Equal(t, KindStruct, summary.Types[2].Kind)

	assert.Equal(t, []Member{{Name: "globalLet"}, {Name: "globalVar", Type: "String"}}, summary.GlobalProperties)

	data, err := json.Marshal(summary.Types[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"protocol","name":"MyProtocol"}`, string(data))
}

func TestSummarizeOverrides(t *testing.T) {
	summary, err := Summarize(loadFixture(t, "attributes.json"))
	require.NoError(t, err)
	require.Len(t, summary.Types, 1)

	child := summary.Types[0]
	assert.Equal(t, []string{"ParentClass"}, child.Inherits)
	assert.True(t, child.Properties[1].Override)
	assert.True(t, child.Methods[0].Override)
	assert.False(t, child.Methods[1].Override)
}

func TestSummarizeNestedTypes(t *testing.T) {
	raw := &RawNode{Children: []*RawNode{{
		Kind: RawClass,
		Name: Str("Outer"),
		Children: []*RawNode{
			{Kind: RawStruct, Name: Str("Inner")},
		},
	}}}
	root, err := NewTree(raw)
	require.NoError(t, err)

	summary, err := Summarize(root)
	require.NoError(t, err)
	require.Len(t, summary.Types, 2)
	assert.Equal(t, "Outer", summary.Types[0].Name)
	assert.Equal(t, "Inner", summary.Types[1].Name)
}

func TestSummarizeRequiresNames(t *testing.T) {
	// The tree is built by hand to bypass NewTree validation.
	root := wrap(&RawNode{Children: []*RawNode{{Kind: RawClass}}})
	_, err := Summarize(root)
	var malformed *declerrors.MalformedTreeError
	assert.True(t, errors.As(err, &malformed))
}
