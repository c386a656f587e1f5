// Package jsonschema describes the JSON side of the translators.
//
// A Renderer turns a Schema Node tree into a JSON Schema (draft 2020-12)
// matching what XMLToJSON produces and JSONToXML accepts. OpenAPI assembles
// rendered schemas and request parameters into an OpenAPI 3 document, and
// Validator checks JSON payloads against a rendered schema.
package jsonschema
