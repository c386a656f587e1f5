package jsonschema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

func loadSchema(t *testing.T, root string) *xsd.Node {
	t.Helper()
	ctx := context.Background()
	p, err := xsd.NewCache().Get(ctx, "testdata/Catalog.xsd", xsd.NewFileSource())
	require.NoError(t, err)
	n, err := p.Parse(ctx, root)
	require.NoError(t, err)
	return n
}

func toJSON(t *testing.T, s *openapi3.Schema) string {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}

const itemSchema = `{
	"type": "object",
	"properties": {
		"sku": {"type": "string"},
		"qty": {"type": "integer", "minimum": 1, "maximum": 99, "default": 1},
		"color": {"type": "string", "enum": ["red", "green"]},
		"price": {
			"type": "object",
			"properties": {
				"_content": {"type": "number"},
				"currency": {"type": "string"}
			},
			"required": ["currency"]
		},
		"weight": {"type": "number"},
		"volume": {"type": "number"},
		"available": {"type": "string", "format": "date"},
		"related": {"type": "array", "maxItems": 3, "items": {}}
	},
	"required": ["sku", "price"],
	"oneOf": [{"required": ["weight"]}, {"required": ["volume"]}]
}`

func TestRenderer_Document(t *testing.T) {
	doc := NewRenderer().Document(loadSchema(t, "catalog"))

	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$id": "urn:catalog?catalog",
		"type": "object",
		"description": "Product catalog",
		"properties": {
			"name": {"type": "string", "pattern": "[A-Z]+", "minLength": 2, "maxLength": 8},
			"updated": {"type": "string", "format": "date-time"},
			"item": {"type": "array", "minItems": 1, "items": `+itemSchema+`},
			"version": {"type": "string", "const": "1.0", "default": "1.0"}
		},
		"required": ["name", "item"]
	}`, toJSON(t, doc))
}

func TestRenderer_Schema(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name string
		root string
		want string
	}{
		{
			name: "repeated sequence renders as array",
			root: "entries",
			want: `{
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"properties": {"key": {"type": "string"}, "value": {"type": "integer"}},
					"required": ["key", "value"]
				}
			}`,
		},
		{
			name: "time leaf",
			root: "opening",
			want: `{"type": "string", "pattern": "^\\d{2}:\\d{2}(:\\d{2})?$"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, toJSON(t, r.Schema(loadSchema(t, tt.root))))
		})
	}
}

func TestTypedValue(t *testing.T) {
	tests := []struct {
		typ   xsd.DataType
		value string
		want  any
	}{
		{xsd.Integer, "12", int64(12)},
		{xsd.Long, " -3 ", int64(-3)},
		{xsd.Integer, "x", "x"},
		{xsd.Double, "1.5", 1.5},
		{xsd.Boolean, "1", true},
		{xsd.Boolean, "false", false},
		{xsd.Boolean, "yes", "yes"},
		{xsd.String, "12", "12"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String()+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, typedValue(tt.typ, tt.value))
		})
	}
}
