// Package transcode translates between JSON and XML.
//
// Both directions can be guided by a schema tree from pkg/xsd. With a
// schema, JSONToXML emits elements in schema order with the schema's
// namespaces and fills in mandatory content that the JSON leaves out, and
// XMLToJSON types leaf values and decides which keys hold arrays. Without
// a schema both translators fall back to a purely structural mapping.
//
// JSON values are represented as nil, bool, json.Number, string, []any and
// *Object. Object keeps keys in document order; ParseJSON and Marshal
// convert to and from bytes.
//
// Translators are immutable after construction and safe for concurrent use.
//
// # Control markers
//
// XMLToJSON recognises two attributes on the XML input:
//
//   - _jsonarray="true" makes an element a JSON array: on the document root
//     the root's children are folded into an array, on any other element
//     the element starts an array even when it occurs once.
//   - _jsonprimitive="true" on an array root turns each child into its
//     text value instead of an object.
//
// The key "_content" holds character data of elements that also have
// attributes.
package transcode
