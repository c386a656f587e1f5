package transcode

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// ChoiceFallback selects what a required choice emits when the JSON input
// holds none of its alternatives.
type ChoiceFallback int

const (
	// ChoiceFallbackFirst generates the mandatory skeleton of the first
	// alternative.
	ChoiceFallbackFirst ChoiceFallback = iota

	// ChoiceFallbackNone emits nothing.
	ChoiceFallbackNone
)

// ParseChoiceFallback parses "first" or "none". The empty string is "first".
func ParseChoiceFallback(s string) (ChoiceFallback, error) {
	switch s {
	case "", "first":
		return ChoiceFallbackFirst, nil
	case "none":
		return ChoiceFallbackNone, nil
	default:
		return ChoiceFallbackFirst, fmt.Errorf("unknown choice fallback %q", s)
	}
}

func (f ChoiceFallback) String() string {
	if f == ChoiceFallbackNone {
		return "none"
	}
	return "first"
}

// JSONToXML translates JSON values into XML documents.
type JSONToXML struct {
	schema   *xsd.Node
	prefixes map[string]string
	fallback ChoiceFallback
}

// JSONToXMLOption configures a JSONToXML.
type JSONToXMLOption func(*JSONToXML)

// WithChoiceFallback sets the policy for required choices without input.
func WithChoiceFallback(f ChoiceFallback) JSONToXMLOption {
	return func(t *JSONToXML) {
		t.fallback = f
	}
}

// NewJSONToXML creates a translator. A nil schema restricts the translator
// to TranslateGeneric.
func NewJSONToXML(schema *xsd.Node, opts ...JSONToXMLOption) *JSONToXML {
	t := &JSONToXML{
		schema:   schema,
		prefixes: map[string]string{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if schema != nil {
		t.assignPrefixes(schema)
	}
	return t
}

// Schema returns the schema root, nil for a generic translator.
func (t *JSONToXML) Schema() *xsd.Node { return t.schema }

// Prefix returns the prefix assigned to a namespace.
func (t *JSONToXML) Prefix(namespace string) (string, bool) {
	p, ok := t.prefixes[namespace]
	return p, ok
}

func (t *JSONToXML) assignPrefixes(n *xsd.Node) {
	if ns := n.Namespace(); !n.IsIndicator() && ns != "" {
		if _, ok := t.prefixes[ns]; !ok {
			t.prefixes[ns] = "ns" + strconv.Itoa(len(t.prefixes))
		}
	}
	if n.IsRecursive() {
		return
	}
	for _, c := range n.Children() {
		t.assignPrefixes(c)
	}
}

// Translate builds a document shaped by the schema. The root element is
// the schema root; v is its content.
func (t *JSONToXML) Translate(v any) (*etree.Document, error) {
	if t.schema == nil {
		return nil, ErrUnsupportedTranslation
	}
	doc := newDocument()
	root := t.element(&doc.Element, t.schema, t.schema.Name())
	switch val := v.(type) {
	case []any:
		t.walkArray("", val, root, t.schema, 0)
	default:
		t.fill(root, t.schema, val)
	}
	return doc, nil
}

// TranslateBytes parses JSON and translates it with Translate.
func (t *JSONToXML) TranslateBytes(data []byte) (*etree.Document, error) {
	if t.schema == nil {
		return nil, ErrUnsupportedTranslation
	}
	v, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return t.Translate(v)
}

// TranslateGeneric maps v onto elements named after the JSON keys, below a
// root element called rootName. A non-empty namespace is bound to the root
// with the prefix "pfx".
func (t *JSONToXML) TranslateGeneric(v any, rootName, namespace string) *etree.Document {
	doc := newDocument()
	var root *etree.Element
	if namespace == "" {
		root = doc.CreateElement(NormalizeKey(rootName))
	} else {
		root = doc.CreateElement("pfx:" + NormalizeKey(rootName))
		root.CreateAttr("xmlns:pfx", namespace)
	}
	switch val := v.(type) {
	case []any:
		t.walkArray("", val, root, nil, 0)
	default:
		t.fillGeneric(root, val)
	}
	return doc
}

func (t *JSONToXML) element(parent *etree.Element, n *xsd.Node, key string) *etree.Element {
	if n == nil {
		return parent.CreateElement(NormalizeKey(key))
	}
	ns := n.Namespace()
	if !n.IsQualified() || ns == "" {
		return parent.CreateElement(key)
	}
	prefix := t.prefixes[ns]
	e := parent.CreateElement(prefix + ":" + key)
	declareNamespace(e, prefix, ns)
	return e
}

func (t *JSONToXML) setAttr(e *etree.Element, n *xsd.Node, key, value string) {
	ns := n.Namespace()
	if !n.IsQualified() || ns == "" {
		e.CreateAttr(key, value)
		return
	}
	prefix := t.prefixes[ns]
	declareNamespace(e, prefix, ns)
	e.CreateAttr(prefix+":"+key, value)
}

// walkArray emits one element per entry, flattening nested arrays and
// stopping at the node's maxOccurs. It returns the number of elements
// emitted so far.
func (t *JSONToXML) walkArray(key string, arr []any, parent *etree.Element, n *xsd.Node, count int) int {
	limit := xsd.Unbounded
	if n != nil && key != "" {
		limit = n.MaxOccurs()
	}
	for _, item := range arr {
		if count >= limit {
			break
		}
		if nested, ok := item.([]any); ok {
			count = t.walkArray(key, nested, parent, n, count)
			continue
		}
		if key == "" {
			if obj, ok := item.(*Object); ok {
				if n == nil {
					t.walkGeneric(obj, parent, nil)
				} else {
					t.walkObject(obj, parent, n)
				}
				continue
			}
			setText(parent.CreateElement("item"), scalarText(item))
			count++
			continue
		}
		e := t.element(parent, n, key)
		if n == nil {
			t.fillGeneric(e, item)
		} else {
			t.fill(e, n, item)
		}
		count++
	}
	return count
}

// fill sets the content of e from a single (non array) JSON value.
func (t *JSONToXML) fill(e *etree.Element, n *xsd.Node, v any) {
	obj, isObject := v.(*Object)
	if !isObject {
		if n.Type() != xsd.Complex {
			setText(e, t.text(n, v))
		}
		if !n.IsLeaf() && !n.IsRecursive() {
			t.walkObject(NewObject(), e, n)
		}
		return
	}
	if n.Type() != xsd.Complex {
		if c, ok := obj.Get(ContentKey); ok {
			setText(e, t.text(n, c))
		} else if f, ok := n.Fixed(); ok {
			setText(e, f)
		}
	}
	t.walkObject(obj, e, n)
}

func (t *JSONToXML) fillGeneric(e *etree.Element, v any) {
	if obj, ok := v.(*Object); ok {
		t.walkGeneric(obj, e, nil)
		return
	}
	setText(e, scalarText(v))
}

func (t *JSONToXML) walkGeneric(obj *Object, e *etree.Element, accept func(string) bool) {
	for _, k := range obj.Keys() {
		if accept != nil && !accept(k) {
			continue
		}
		v, _ := obj.Get(k)
		if arr, ok := v.([]any); ok {
			t.walkArray(k, arr, e, nil, 0)
			continue
		}
		t.fillGeneric(e.CreateElement(NormalizeKey(k)), v)
	}
}

func (t *JSONToXML) walkObject(obj *Object, e *etree.Element, n *xsd.Node) {
	if n.IsAny() || n.Type() == xsd.Any {
		t.walkGeneric(obj, e, nil)
		return
	}
	for _, c := range n.Children() {
		t.walkChild(obj, e, n, c, false)
	}
}

func (t *JSONToXML) walkChild(obj *Object, e *etree.Element, owner, c *xsd.Node, optional bool) {
	switch {
	case c.IsIndicator():
		t.walkIndicator(obj, e, owner, c, optional)
	case c.IsAny():
		t.walkWildcard(obj, e, owner, c)
	default:
		t.walkNamed(obj, e, c, optional)
	}
}

// walkIndicator visits a model group. A group that is optional on its own
// becomes mandatory as soon as the input holds any of its members.
func (t *JSONToXML) walkIndicator(obj *Object, e *etree.Element, owner, ind *xsd.Node, optional bool) {
	optional = (optional || ind.MinOccurs() == 0) && !present(obj, ind)
	if ind.Indicator() == xsd.Choice {
		t.walkChoice(obj, e, owner, ind, optional)
		return
	}
	for _, c := range ind.Children() {
		t.walkChild(obj, e, owner, c, optional)
	}
}

// walkChoice emits the first alternative that produces output. Repeatable
// choices emit every alternative that does.
func (t *JSONToXML) walkChoice(obj *Object, e *etree.Element, owner, ind *xsd.Node, optional bool) {
	alternatives := ind.Children()
	produced := false
	for _, alt := range alternatives {
		before := len(e.Child)
		t.walkChild(obj, e, owner, alt, true)
		if len(e.Child) > before {
			produced = true
			if ind.MaxOccurs() <= 1 {
				return
			}
		}
	}
	if produced || optional || t.fallback == ChoiceFallbackNone || len(alternatives) == 0 {
		return
	}
	t.walkChild(obj, e, owner, alternatives[0], false)
}

func (t *JSONToXML) walkWildcard(obj *Object, e *etree.Element, owner, w *xsd.Node) {
	accept := func(k string) bool {
		return k != ContentKey && owner.Child(k) == nil
	}
	if !w.IsAttribute() {
		t.walkGeneric(obj, e, accept)
		return
	}
	if hasElementWildcard(owner) {
		return
	}
	for _, k := range obj.Keys() {
		if !accept(k) {
			continue
		}
		v, _ := obj.Get(k)
		switch v.(type) {
		case *Object, []any, nil:
			continue
		}
		t.setAttr(e, w, NormalizeKey(k), scalarText(v))
	}
}

func (t *JSONToXML) walkNamed(obj *Object, e *etree.Element, n *xsd.Node, optional bool) {
	if n.MaxOccurs() == 0 {
		return
	}
	v, ok := obj.Get(n.Name())
	if !ok {
		t.absent(e, n, optional)
		return
	}
	if n.IsAttribute() {
		switch v.(type) {
		case *Object, []any:
			if f, ok := n.Fixed(); ok {
				t.setAttr(e, n, n.Name(), f)
			}
		default:
			t.setAttr(e, n, n.Name(), t.text(n, v))
		}
		return
	}

	count := 1
	if arr, isArray := v.([]any); isArray {
		count = t.walkArray(n.Name(), arr, e, n, 0)
	} else {
		t.fill(t.element(e, n, n.Name()), n, v)
	}
	for ; count < n.MinOccurs(); count++ {
		t.skeleton(e, n)
	}
}

func (t *JSONToXML) absent(e *etree.Element, n *xsd.Node, optional bool) {
	if n.IsAttribute() {
		if _, hasDefault := n.Default(); n.MinOccurs() > 0 || hasDefault {
			v, _ := n.OptionalValue()
			t.setAttr(e, n, n.Name(), v)
		}
		return
	}
	if optional {
		return
	}
	for i := 0; i < n.MinOccurs(); i++ {
		t.skeleton(e, n)
	}
}

// skeleton emits an element made only of schema mandated content.
func (t *JSONToXML) skeleton(parent *etree.Element, n *xsd.Node) {
	e := t.element(parent, n, n.Name())
	if n.Type() != xsd.Complex {
		if v, ok := n.OptionalValue(); ok {
			setText(e, v)
		}
	}
	if !n.IsRecursive() && !n.IsLeaf() {
		t.walkObject(NewObject(), e, n)
	}
}

// text returns the character data for a node: the fixed value if declared,
// the supplied value otherwise.
func (t *JSONToXML) text(n *xsd.Node, v any) string {
	if f, ok := n.Fixed(); ok {
		return f
	}
	return scalarText(v)
}

// present reports whether obj holds a value for n or, for indicators, for
// any of its members.
func present(obj *Object, n *xsd.Node) bool {
	if !n.IsIndicator() {
		if n.IsAny() {
			return false
		}
		_, ok := obj.Get(n.Name())
		return ok
	}
	for _, c := range n.Children() {
		if present(obj, c) {
			return true
		}
	}
	return false
}

func hasElementWildcard(n *xsd.Node) bool {
	for _, c := range n.Children() {
		if c.IsAny() && !c.IsAttribute() {
			return true
		}
		if c.IsIndicator() && hasElementWildcard(c) {
			return true
		}
	}
	return false
}

func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case *Object, []any:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
