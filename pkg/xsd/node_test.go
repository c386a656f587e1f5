package xsd

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_Cardinality(t *testing.T) {
	tests := []struct {
		min, max int
		want     string
	}{
		{1, 1, "1"},
		{0, 1, "0..1"},
		{0, Unbounded, "0..n"},
		{2, 5, "2..5"},
		{0, 0, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			n := newElement("x", "", true, tt.min, tt.max)
			assert.Equal(t, tt.want, n.Cardinality())
		})
	}
}

func TestNode_PrimitivePlaceholders(t *testing.T) {
	tests := []struct {
		xsdType     string
		dataType    DataType
		placeholder string
	}{
		{"byte", Integer, "0"},
		{"unsignedShort", Integer, "0"},
		{"unsignedInt", Long, "0"},
		{"negativeInteger", Long, "-1"},
		{"positiveInteger", Long, "1"},
		{"integer", Long, "0"},
		{"float", Double, "0.0"},
		{"decimal", Double, "0.0"},
		{"boolean", Boolean, "false"},
		{"date", Date, "2000-01-01"},
		{"dateTime", DateTime, "2000-01-01T00:00:00Z"},
		{"time", Time, "00:00:00"},
		{"duration", String, "P0S"},
	}
	for _, tt := range tests {
		t.Run(tt.xsdType, func(t *testing.T) {
			n := newElement("x", "", true, 1, 1)
			n.setPrimitive(tt.xsdType)
			assert.Equal(t, tt.dataType, n.Type())
			v, ok := n.OptionalValue()
			assert.True(t, ok)
			assert.Equal(t, tt.placeholder, v)
		})
	}

	for _, name := range []string{"string", "token", "anyURI", "QName"} {
		n := newElement("x", "", true, 1, 1)
		n.setPrimitive(name)
		assert.Equal(t, String, n.Type(), name)
		_, ok := n.OptionalValue()
		assert.False(t, ok, name)
	}

	n := newElement("x", "", true, 1, 1)
	n.setPrimitive("anyType")
	assert.Equal(t, Any, n.Type())
	assert.False(t, n.IsSimpleType())
}

func TestNode_OptionalValuePrecedence(t *testing.T) {
	n := newElement("x", "", true, 1, 1)
	n.setPrimitive("int")
	v, _ := n.OptionalValue()
	assert.Equal(t, "0", v)

	n.setDefault("7")
	v, _ = n.OptionalValue()
	assert.Equal(t, "7", v)

	n.fixedValue = strPtr("9")
	v, _ = n.OptionalValue()
	assert.Equal(t, "9", v)
}

func TestNode_TypeEscalation(t *testing.T) {
	parent := newElement("p", "", true, 1, 1)
	parent.addChild(newAttribute("a", "", false, 0, 1))
	assert.Equal(t, String, parent.Type())

	seq := newIndicator(Sequence, 1, 1)
	parent.addChild(seq)
	assert.Equal(t, Complex, parent.Type())

	parent.setMixed()
	assert.Equal(t, Mixed, parent.Type())

	parent.setPrimitive("int")
	assert.Equal(t, Mixed, parent.Type())

	plain := newElement("s", "", true, 1, 1)
	plain.setMixed()
	assert.Equal(t, String, plain.Type())
}

func TestNode_ChildSearchesIndicators(t *testing.T) {
	root := newElement("root", "urn:x", true, 1, 1)
	seq := newIndicator(Sequence, 1, 1)
	root.addChild(seq)
	choice := newIndicator(Choice, 1, 1)
	seq.addChild(choice)
	leaf := newElement("leaf", "urn:x", true, 1, 1)
	choice.addChild(leaf)

	require.Same(t, leaf, root.Child("leaf"))
	assert.Nil(t, root.Child("missing"))
	assert.Equal(t, "/root/leaf", leaf.Path())
	assert.Equal(t, "/root/leaf 1 STRING", leaf.String())
}

func TestNode_Restrictions(t *testing.T) {
	n := newElement("x", "", true, 1, 1)
	n.addRestriction("enumeration", "A")
	n.addRestriction("enumeration", "B")
	n.addRestriction("maxLength", "4")

	assert.Equal(t, "enumeration: 'A|B'; maxLength: '4'", n.RestrictionsText())

	r := n.Restrictions()
	r["enumeration"] = "changed"
	v, _ := n.Restriction("enumeration")
	assert.Equal(t, "A|B", v)
}

func strPtr(s string) *string { return &s }

func TestNode_RecursionFollowsDeclaration(t *testing.T) {
	outerDecl, innerDecl := etree.NewElement("element"), etree.NewElement("element")

	outer := newElement("item", "urn:x", true, 1, 1)
	outer.decl = outerDecl
	inner := newElement("item", "urn:x", true, 0, 1)
	inner.decl = innerDecl
	outer.addChild(inner)
	assert.False(t, inner.IsRecursive())

	again := newElement("item", "urn:x", true, 0, 1)
	again.decl = outerDecl
	inner.addChild(again)
	assert.True(t, again.IsRecursive())
	assert.Same(t, outer, again.alias)

	// nodes without a declaration or named type are never aliased
	loose := newElement("item", "urn:x", true, 0, 1)
	inner.addChild(loose)
	assert.False(t, loose.IsRecursive())
}
