package jsonschema

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mcsuka/xml-xsd-json/pkg/logging"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// Draft is the JSON Schema dialect of rendered documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

const timePattern = `^\d{2}:\d{2}(:\d{2})?$`

// Renderer renders Schema Node trees as JSON Schemas describing the JSON
// side of the translators. Renderers are stateless and safe for concurrent
// use.
type Renderer struct {
	log *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLogger sets the logger used to report facets that cannot be
// represented.
func WithLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.log = l
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{log: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Document renders n as a standalone JSON Schema with $schema and $id.
func (r *Renderer) Document(n *xsd.Node) *openapi3.Schema {
	s := r.Schema(n)
	if s.Extensions == nil {
		s.Extensions = map[string]any{}
	}
	s.Extensions["$schema"] = Draft
	s.Extensions["$id"] = n.Namespace() + "?" + n.Name()
	return s
}

// Schema renders the JSON value an instance of n translates to.
func (r *Renderer) Schema(n *xsd.Node) *openapi3.Schema {
	if n.IsLeaf() {
		return r.leaf(n)
	}
	return r.element(n)
}

// object accumulates the members of a JSON object while a content model is
// flattened into it.
type object struct {
	properties openapi3.Schemas
	required   []string
	choices    []openapi3.SchemaRefs
}

func newObject() *object {
	return &object{properties: openapi3.Schemas{}}
}

func (o *object) schema() *openapi3.Schema {
	s := &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeObject}}
	if len(o.properties) > 0 {
		s.Properties = o.properties
	}
	if len(o.required) > 0 {
		s.Required = o.required
	}
	switch len(o.choices) {
	case 0:
	case 1:
		s.OneOf = o.choices[0]
	default:
		for _, c := range o.choices {
			s.AllOf = append(s.AllOf, openapi3.NewSchemaRef("", &openapi3.Schema{OneOf: c}))
		}
	}
	return s
}

func (r *Renderer) element(n *xsd.Node) *openapi3.Schema {
	if n.IsRecursive() {
		return r.repeat(n, &openapi3.Schema{})
	}

	obj := newObject()
	if n.IsSimpleType() {
		obj.properties[transcode.ContentKey] = openapi3.NewSchemaRef("", r.scalar(n))
	}

	var array *openapi3.Schema
	for _, c := range n.Children() {
		if c.IsIndicator() && c.MaxOccurs() > 1 {
			array = r.asArray(c, r.group(c))
			continue
		}
		r.collect(obj, c, false)
	}

	var s *openapi3.Schema
	switch {
	case array != nil && len(obj.properties) == 0:
		s = array
	case array != nil:
		obj.properties[transcode.ContentKey] = openapi3.NewSchemaRef("", array)
		s = obj.schema()
	default:
		s = obj.schema()
	}
	if doc := n.Documentation(); doc != "" {
		s.Description = doc
	}
	return r.repeat(n, s)
}

// group renders one repetition of a repeatable model group.
func (r *Renderer) group(ind *xsd.Node) *openapi3.Schema {
	obj := newObject()
	for _, c := range ind.Children() {
		r.collect(obj, c, false)
	}
	return obj.schema()
}

// collect adds c to obj. Members of optional groups are never required.
func (r *Renderer) collect(obj *object, c *xsd.Node, optional bool) {
	switch {
	case c.IsAny():
		// wildcards are covered by additional properties
	case c.IsAttribute():
		obj.properties[c.Name()] = openapi3.NewSchemaRef("", r.leaf(c))
		if c.MinOccurs() > 0 {
			obj.required = append(obj.required, c.Name())
		}
	case c.Indicator() == xsd.Choice:
		r.choice(obj, c, optional)
	case c.IsIndicator():
		optional = optional || c.MinOccurs() == 0
		for _, gc := range c.Children() {
			r.collect(obj, gc, optional)
		}
	default:
		obj.properties[c.Name()] = openapi3.NewSchemaRef("", r.Schema(c))
		if !optional && c.MinOccurs() > 0 {
			obj.required = append(obj.required, c.Name())
		}
	}
}

// choice merges the alternatives' properties into obj. A mandatory choice
// also contributes a oneOf over the members each alternative requires.
func (r *Renderer) choice(obj *object, ind *xsd.Node, optional bool) {
	var alternatives openapi3.SchemaRefs
	exclusive := !optional && ind.MinOccurs() > 0 && ind.MaxOccurs() <= 1
	for _, alt := range ind.Children() {
		sub := newObject()
		r.collect(sub, alt, false)
		for k, v := range sub.properties {
			obj.properties[k] = v
		}
		if len(sub.required) == 0 {
			exclusive = false
			continue
		}
		alternatives = append(alternatives, openapi3.NewSchemaRef("", &openapi3.Schema{Required: sub.required}))
	}
	if exclusive && len(alternatives) > 1 {
		obj.choices = append(obj.choices, alternatives)
	}
}

func (r *Renderer) leaf(n *xsd.Node) *openapi3.Schema {
	return r.repeat(n, r.scalar(n))
}

// scalar renders the value type of a simple node, without cardinality.
func (r *Renderer) scalar(n *xsd.Node) *openapi3.Schema {
	s := &openapi3.Schema{}
	restrictions := n.Restrictions()

	switch n.Type() {
	case xsd.Any:
		return s
	case xsd.Complex:
		s.Type = &openapi3.Types{openapi3.TypeObject}
		return s
	case xsd.Boolean:
		s.Type = &openapi3.Types{openapi3.TypeBoolean}
	case xsd.Integer, xsd.Long:
		s.Type = &openapi3.Types{openapi3.TypeInteger}
		s.Min = r.number(n, restrictions["minInclusive"])
		s.Max = r.number(n, restrictions["maxInclusive"])
	case xsd.Double:
		s.Type = &openapi3.Types{openapi3.TypeNumber}
		s.Min = r.number(n, restrictions["minInclusive"])
		s.Max = r.number(n, restrictions["maxInclusive"])
	case xsd.Date:
		s.Type = &openapi3.Types{openapi3.TypeString}
		s.Format = "date"
	case xsd.DateTime:
		s.Type = &openapi3.Types{openapi3.TypeString}
		s.Format = "date-time"
	case xsd.Time:
		s.Type = &openapi3.Types{openapi3.TypeString}
		s.Pattern = timePattern
	default:
		s.Type = &openapi3.Types{openapi3.TypeString}
		s.Pattern = restrictions["pattern"]
		if enum, ok := restrictions["enumeration"]; ok {
			for _, v := range strings.Split(enum, "|") {
				s.Enum = append(s.Enum, v)
			}
		}
		if l, ok := r.length(n, restrictions["length"]); ok {
			s.MinLength = l
			s.MaxLength = &l
		}
		if l, ok := r.length(n, restrictions["minLength"]); ok {
			s.MinLength = l
		}
		if l, ok := r.length(n, restrictions["maxLength"]); ok {
			s.MaxLength = &l
		}
	}

	if f, ok := n.Fixed(); ok {
		s.Extensions = map[string]any{"const": typedValue(n.Type(), f)}
	}
	if d, ok := n.Default(); ok {
		s.Default = typedValue(n.Type(), d)
	}
	return s
}

// repeat wraps s in an array schema when n may occur more than once.
func (r *Renderer) repeat(n *xsd.Node, s *openapi3.Schema) *openapi3.Schema {
	if n.MaxOccurs() > 1 {
		return r.asArray(n, s)
	}
	return s
}

func (r *Renderer) asArray(n *xsd.Node, items *openapi3.Schema) *openapi3.Schema {
	s := &openapi3.Schema{
		Type:  &openapi3.Types{openapi3.TypeArray},
		Items: openapi3.NewSchemaRef("", items),
	}
	if n.MinOccurs() > 0 {
		s.MinItems = uint64(n.MinOccurs())
	}
	if n.MaxOccurs() < xsd.Unbounded {
		maxItems := uint64(n.MaxOccurs())
		s.MaxItems = &maxItems
	}
	return s
}

func (r *Renderer) number(n *xsd.Node, v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.log.Warn("ignoring numeric facet", "path", n.Path(), "value", v, "error", err)
		return nil
	}
	return &f
}

func (r *Renderer) length(n *xsd.Node, v string) (uint64, bool) {
	if v == "" {
		return 0, false
	}
	l, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		r.log.Warn("ignoring length facet", "path", n.Path(), "value", v, "error", err)
		return 0, false
	}
	return l, true
}

// typedValue converts a default or fixed value to the JSON type the
// translators produce for t. Unparsable values stay strings.
func typedValue(t xsd.DataType, v string) any {
	switch t {
	case xsd.Integer, xsd.Long:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	case xsd.Double:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	case xsd.Boolean:
		switch strings.TrimSpace(v) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	}
	return v
}
