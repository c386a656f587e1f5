package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
)

func catalogValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(NewRenderer().Document(loadSchema(t, "catalog")))
	require.NoError(t, err)
	return v
}

func TestValidator_ValidateBytes(t *testing.T) {
	v := catalogValidator(t)

	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantField string
	}{
		{
			name:      "valid",
			input:     `{"name":"ABC","item":[{"sku":"s1","price":{"_content":9.5,"currency":"EUR"},"weight":2}]}`,
			wantValid: true,
		},
		{
			name:      "pattern mismatch",
			input:     `{"name":"abc","item":[{"sku":"s1","price":{"_content":1,"currency":"EUR"},"volume":1}]}`,
			wantField: "name",
		},
		{
			name:      "out of range",
			input:     `{"name":"ABC","item":[{"sku":"s1","qty":100,"price":{"_content":1,"currency":"EUR"},"weight":1}]}`,
			wantField: "item.0.qty",
		},
		{
			name:      "both choice alternatives",
			input:     `{"name":"ABC","item":[{"sku":"s1","price":{"_content":1,"currency":"EUR"},"weight":1,"volume":1}]}`,
			wantField: "item.0",
		},
		{
			name:      "wrong fixed value",
			input:     `{"name":"ABC","version":"2.0","item":[{"sku":"s1","price":{"_content":1,"currency":"EUR"},"weight":1}]}`,
			wantField: "version",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateBytes([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid, result.Error())
			if tt.wantValid {
				assert.Empty(t, result.Errors)
				return
			}
			fields := make([]string, 0, len(result.Errors))
			for _, e := range result.Errors {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidator_MissingRequired(t *testing.T) {
	result, err := catalogValidator(t).ValidateBytes([]byte(`{"name":"ABC"}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error(), "item")
}

func TestValidator_Malformed(t *testing.T) {
	_, err := catalogValidator(t).ValidateBytes([]byte(`{"name":`))
	assert.ErrorIs(t, err, transcode.ErrMalformedInput)
}

func TestValidator_TranslatedXML(t *testing.T) {
	schema := loadSchema(t, "catalog")
	v, err := NewValidator(NewRenderer().Document(schema))
	require.NoError(t, err)

	value, err := transcode.NewXMLToJSON(schema).TranslateBytes([]byte(`<c:catalog xmlns:c="urn:catalog" version="1.0">` +
		`<c:name>ABC</c:name>` +
		`<c:item><c:sku>s1</c:sku><c:qty>2</c:qty><c:price currency="EUR">9.5</c:price><c:weight>1.2</c:weight></c:item>` +
		`</c:catalog>`))
	require.NoError(t, err)

	result, err := v.Validate(value)
	require.NoError(t, err)
	assert.True(t, result.Valid, result.Error())
}
