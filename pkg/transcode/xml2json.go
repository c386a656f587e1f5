package transcode

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// Reserved names shared by both translators.
const (
	ForceArrayAttr  = "_jsonarray"
	ForceScalarAttr = "_jsonprimitive"
	ContentKey      = "_content"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// XMLToJSON translates XML elements into JSON values.
type XMLToJSON struct {
	schema           *xsd.Node
	ignoreAttributes bool
}

// XMLToJSONOption configures an XMLToJSON.
type XMLToJSONOption func(*XMLToJSON)

// WithIgnoreAttributes drops XML attributes from the output.
func WithIgnoreAttributes(ignore bool) XMLToJSONOption {
	return func(t *XMLToJSON) {
		t.ignoreAttributes = ignore
	}
}

// NewXMLToJSON creates a translator. The schema may be nil, in which case
// every leaf becomes a string and arrays only appear for repeated elements
// or the _jsonarray marker.
func NewXMLToJSON(schema *xsd.Node, opts ...XMLToJSONOption) *XMLToJSON {
	t := &XMLToJSON{schema: schema}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate converts the content of root. The root element itself is a
// wrapper and does not appear in the result.
func (t *XMLToJSON) Translate(root *etree.Element) (any, error) {
	if root == nil {
		return nil, ErrMalformedInput
	}
	if t.isRootArray(root) {
		return t.walkRootArray(root)
	}
	return t.walk(root, t.schema)
}

// TranslateBytes parses an XML document and translates its root element.
func (t *XMLToJSON) TranslateBytes(data []byte) (any, error) {
	doc, err := ParseXML(data)
	if err != nil {
		return nil, err
	}
	return t.Translate(doc.Root())
}

func (t *XMLToJSON) isRootArray(root *etree.Element) bool {
	if t.schema != nil {
		children := t.schema.Children()
		if len(children) == 1 && children[0].IsIndicator() && children[0].MaxOccurs() > 1 {
			return true
		}
	}
	return root.SelectAttrValue(ForceArrayAttr, "") == "true"
}

// walkRootArray folds the children of root into an array. A new entry
// starts whenever a child name repeats within the current one.
func (t *XMLToJSON) walkRootArray(root *etree.Element) (any, error) {
	arr := []any{}
	if root.SelectAttrValue(ForceScalarAttr, "") == "true" {
		for _, c := range root.ChildElements() {
			arr = append(arr, c.Text())
		}
		return arr, nil
	}

	var current *Object
	for _, c := range root.ChildElements() {
		if current == nil {
			current = NewObject()
		} else if _, seen := current.Get(c.Tag); seen {
			arr = append(arr, current)
			current = NewObject()
		}
		if err := t.merge(current, c, t.schema); err != nil {
			return nil, err
		}
	}
	if current != nil {
		arr = append(arr, current)
	}
	return arr, nil
}

func (t *XMLToJSON) walk(e *etree.Element, n *xsd.Node) (any, error) {
	obj := NewObject()
	if !t.ignoreAttributes {
		for i := range e.Attr {
			a := &e.Attr[i]
			if skipAttr(a) {
				continue
			}
			v, err := t.convert(e, childNode(n, a.Key), strings.TrimSpace(a.Value), a.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(a.Key, v)
		}
	}

	children := e.ChildElements()
	if len(children) > 0 {
		for _, c := range children {
			if err := t.merge(obj, c, n); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}

	v, err := t.leaf(e, n)
	if err != nil {
		return nil, err
	}
	if obj.Len() == 0 {
		return v, nil
	}
	if v != nil {
		obj.Set(ContentKey, v)
	}
	return obj, nil
}

// merge adds the translation of child c to obj, turning repeated names
// into arrays.
func (t *XMLToJSON) merge(obj *Object, c *etree.Element, parent *xsd.Node) error {
	n := childNode(parent, c.Tag)
	v, err := t.walk(c, n)
	if err != nil {
		return err
	}
	if existing, ok := obj.Get(c.Tag); ok {
		if arr, isArray := existing.([]any); isArray {
			obj.Set(c.Tag, append(arr, v))
		} else {
			obj.Set(c.Tag, []any{existing, v})
		}
		return nil
	}
	if c.SelectAttrValue(ForceArrayAttr, "") == "true" || (n != nil && n.MaxOccurs() > 1) {
		obj.Set(c.Tag, []any{v})
		return nil
	}
	obj.Set(c.Tag, v)
	return nil
}

func (t *XMLToJSON) leaf(e *etree.Element, n *xsd.Node) (any, error) {
	if e.SelectAttrValue("xsi:nil", "") == "true" {
		return nil, nil
	}
	text := e.Text()
	return t.convert(e, n, strings.TrimSpace(text), text)
}

// convert types a value according to n. Numeric and boolean values are
// parsed from trimmed text, strings keep their whitespace.
func (t *XMLToJSON) convert(e *etree.Element, n *xsd.Node, trimmed, raw string) (any, error) {
	if n == nil {
		return raw, nil
	}
	switch n.Type() {
	case xsd.Integer, xsd.Long:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, coercionError(e, n, raw, err)
		}
		if n.Type() == xsd.Integer && (i > math.MaxInt32 || i < math.MinInt32) {
			return nil, coercionError(e, n, raw, strconv.ErrRange)
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case xsd.Double:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err == nil && (math.IsInf(f, 0) || math.IsNaN(f)) {
			err = errors.New("not a finite number")
		}
		if err != nil {
			return nil, coercionError(e, n, raw, err)
		}
		if jsonNumber.MatchString(trimmed) {
			return json.Number(trimmed), nil
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case xsd.Boolean:
		switch trimmed {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, coercionError(e, n, raw, errors.New("not a boolean"))
	case xsd.Complex, xsd.Mixed, xsd.Any:
		return nil, nil
	default:
		return raw, nil
	}
}

func coercionError(e *etree.Element, n *xsd.Node, value string, cause error) error {
	return &ScalarCoercionError{
		Path:  elementPath(e),
		Type:  n.Type(),
		Value: value,
		Cause: cause,
	}
}

func childNode(n *xsd.Node, name string) *xsd.Node {
	if n == nil {
		return nil
	}
	return n.Child(name)
}

func skipAttr(a *etree.Attr) bool {
	switch {
	case a.Space == "xmlns", a.Space == "" && a.Key == "xmlns":
		return true
	case a.Space == "xsi", a.NamespaceURI() == xsiNamespace:
		return true
	case a.Space == "" && (a.Key == ForceArrayAttr || a.Key == ForceScalarAttr):
		return true
	}
	return false
}
