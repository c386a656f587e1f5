package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
)

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Result holds the outcome of a validation.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

func (r *Result) add(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// Error joins the failures, or returns "" for a valid result.
func (r *Result) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// Validator checks JSON documents against a rendered schema. The schema is
// compiled once; Validate may be called concurrently.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles s, normally the result of Renderer.Document.
func NewValidator(s *openapi3.Schema) (*Validator, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// ValidateBytes validates a JSON text.
func (v *Validator) ValidateBytes(data []byte) (*Result, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transcode.ErrMalformedInput, err)
	}
	return v.validate(doc), nil
}

// Validate validates a value of the transcode JSON model.
func (v *Validator) Validate(value any) (*Result, error) {
	data, err := transcode.Marshal(value)
	if err != nil {
		return nil, err
	}
	return v.ValidateBytes(data)
}

func (v *Validator) validate(doc any) *Result {
	result := &Result{Valid: true}
	err := v.schema.Validate(doc)
	if err == nil {
		return result
	}
	if verr, ok := err.(*jsonschema.ValidationError); ok {
		parseSchemaErrors(verr, result)
	} else {
		result.add("", err.Error())
	}
	return result
}

func parseSchemaErrors(err *jsonschema.ValidationError, result *Result) {
	if len(err.Causes) == 0 {
		result.add(fieldFromPointer(err.InstanceLocation), err.Message)
		return
	}
	for _, cause := range err.Causes {
		parseSchemaErrors(cause, result)
	}
}

// fieldFromPointer converts a JSON pointer to dot notation.
func fieldFromPointer(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	p = strings.TrimPrefix(p, "/")
	return strings.ReplaceAll(p, "/", ".")
}
