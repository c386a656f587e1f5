package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantErr     bool
		wantPattern string
		wantParams  []string
	}{
		{name: "root", path: "/", wantPattern: "/"},
		{name: "literal", path: "/orders", wantPattern: "/orders"},
		{name: "trailing slash", path: "/orders/", wantPattern: "/orders"},
		{name: "params", path: "/orders/{orderId}/items/{item_no}", wantPattern: "/orders/{}/items/{}", wantParams: []string{"orderId", "item_no"}},
		{name: "relative", path: "orders", wantErr: true},
		{name: "empty", path: "", wantErr: true},
		{name: "empty segment", path: "/orders//items", wantErr: true},
		{name: "partial segment", path: "/orders/id-{id}", wantErr: true},
		{name: "empty name", path: "/orders/{}", wantErr: true},
		{name: "invalid name", path: "/orders/{1id}", wantErr: true},
		{name: "repeated name", path: "/a/{id}/b/{id}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path, tmpl.String())
			assert.Equal(t, tt.wantPattern, tmpl.Pattern())
			assert.Equal(t, tt.wantParams, tmpl.Params())
		})
	}
}

func TestTemplate_Match(t *testing.T) {
	tmpl := MustParseTemplate("/orders/{orderId}/items/{item}")

	tests := []struct {
		name   string
		path   string
		want   map[string]string
		wantOK bool
	}{
		{name: "match", path: "/orders/42/items/7", want: map[string]string{"orderId": "42", "item": "7"}, wantOK: true},
		{name: "trailing slash", path: "/orders/42/items/7/", want: map[string]string{"orderId": "42", "item": "7"}, wantOK: true},
		{name: "escaped value", path: "/orders/a%2Fb/items/x%20y", want: map[string]string{"orderId": "a/b", "item": "x y"}, wantOK: true},
		{name: "invalid escape kept", path: "/orders/%zz/items/1", want: map[string]string{"orderId": "%zz", "item": "1"}, wantOK: true},
		{name: "literal mismatch", path: "/orders/42/lines/7"},
		{name: "too short", path: "/orders/42/items"},
		{name: "too long", path: "/orders/42/items/7/8"},
		{name: "empty segment", path: "/orders//items/7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, ok := tmpl.Match(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, params)
		})
	}

	params, ok := MustParseTemplate("/").Match("/")
	assert.True(t, ok)
	assert.Empty(t, params)
}

func TestTemplate_Has(t *testing.T) {
	tmpl := MustParseTemplate("/products/{productId}")
	assert.True(t, tmpl.Has("productId"))
	assert.False(t, tmpl.Has("products"))
	assert.Panics(t, func() { MustParseTemplate("products") })
}
