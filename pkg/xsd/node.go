package xsd

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Unbounded is the maxOccurs value of "unbounded" declarations.
const Unbounded = math.MaxInt

// Wildcard is the name of any and anyAttribute nodes.
const Wildcard = "*"

// Indicator is the kind of a model group node.
type Indicator string

// Indicator kinds. Element and attribute nodes have NoIndicator.
const (
	NoIndicator Indicator = ""
	Sequence    Indicator = "sequence"
	Choice      Indicator = "choice"
	All         Indicator = "all"
)

// Node is one node of the schema tree.
type Node struct {
	name      string
	namespace string
	indicator Indicator
	attribute bool
	wildcard  bool
	qualified bool
	minOccurs int
	maxOccurs int

	dataType       DataType
	placeholder    string
	hasPlaceholder bool
	defaultValue   *string
	fixedValue     *string
	customType     string
	decl           *etree.Element
	documentation  string
	restrictions   map[string]string

	parent   *Node
	alias    *Node
	children []*Node
	named    map[string]*Node
	path     string
}

func newIndicator(kind Indicator, minOccurs, maxOccurs int) *Node {
	return &Node{
		indicator: kind,
		minOccurs: minOccurs,
		maxOccurs: maxOccurs,
		named:     map[string]*Node{},
	}
}

func newElement(name, namespace string, qualified bool, minOccurs, maxOccurs int) *Node {
	return &Node{
		name:      name,
		namespace: namespace,
		qualified: qualified,
		minOccurs: minOccurs,
		maxOccurs: maxOccurs,
		named:     map[string]*Node{},
		path:      "/" + name,
	}
}

func newAttribute(name, namespace string, qualified bool, minOccurs, maxOccurs int) *Node {
	n := newElement(name, namespace, qualified, minOccurs, maxOccurs)
	n.attribute = true
	n.path = "/@" + name
	return n
}

func newWildcard(attribute bool, namespace string, qualified bool, minOccurs, maxOccurs int) *Node {
	n := newElement(Wildcard, namespace, qualified, minOccurs, maxOccurs)
	n.attribute = attribute
	n.wildcard = true
	n.dataType = Any
	return n
}

// Name returns the local name. Indicators have an empty name, wildcards "*".
func (n *Node) Name() string { return n.name }

// Namespace returns the namespace the node was declared in.
func (n *Node) Namespace() string { return n.namespace }

// Indicator returns the model group kind, or NoIndicator.
func (n *Node) Indicator() Indicator { return n.indicator }

// IsIndicator reports whether n is a sequence, choice or all group.
func (n *Node) IsIndicator() bool { return n.indicator != NoIndicator }

// IsAttribute reports whether n is an attribute or attribute wildcard.
func (n *Node) IsAttribute() bool { return n.attribute }

// IsAny reports whether n is an any or anyAttribute wildcard.
func (n *Node) IsAny() bool { return n.wildcard }

// IsQualified reports whether instances must carry the node's namespace.
func (n *Node) IsQualified() bool { return n.qualified }

// IsRecursive reports whether n is an alias of one of its ancestors.
func (n *Node) IsRecursive() bool { return n.alias != nil }

// MinOccurs returns the lower occurrence bound.
func (n *Node) MinOccurs() int { return n.minOccurs }

// MaxOccurs returns the upper occurrence bound, Unbounded when unlimited.
func (n *Node) MaxOccurs() int { return n.maxOccurs }

// Type returns the scalar classification.
func (n *Node) Type() DataType { return n.dataType }

// CustomType returns the name of the named type the node was declared with.
func (n *Node) CustomType() string { return n.customType }

// Documentation returns the annotation text, if any.
func (n *Node) Documentation() string { return n.documentation }

// Parent returns the owning node, nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Path returns the slash separated location of the node below its root.
func (n *Node) Path() string { return n.path }

// Default returns the declared default value. A fixed value is also a default.
func (n *Node) Default() (string, bool) {
	if n.defaultValue == nil {
		return "", false
	}
	return *n.defaultValue, true
}

// Fixed returns the declared fixed value.
func (n *Node) Fixed() (string, bool) {
	if n.fixedValue == nil {
		return "", false
	}
	return *n.fixedValue, true
}

// OptionalValue returns the value to use when an instance is absent:
// the fixed value, else the default, else the type's placeholder.
func (n *Node) OptionalValue() (string, bool) {
	if n.fixedValue != nil {
		return *n.fixedValue, true
	}
	if n.defaultValue != nil {
		return *n.defaultValue, true
	}
	if n.hasPlaceholder {
		return n.placeholder, true
	}
	return "", false
}

// Restrictions returns a copy of the recorded facets. Repeated facets such
// as enumeration are joined with "|".
func (n *Node) Restrictions() map[string]string {
	out := make(map[string]string, len(n.restrictions))
	for k, v := range n.restrictions {
		out[k] = v
	}
	return out
}

// Restriction returns a single facet value.
func (n *Node) Restriction(facet string) (string, bool) {
	v, ok := n.restrictions[facet]
	return v, ok
}

// RestrictionsText renders the facets as "k: 'v'" pairs sorted by key.
func (n *Node) RestrictionsText() string {
	if len(n.restrictions) == 0 {
		return ""
	}
	keys := make([]string, 0, len(n.restrictions))
	for k := range n.restrictions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": '" + n.restrictions[k] + "'"
	}
	return strings.Join(parts, "; ")
}

// Children returns the ordered child list. Aliases return the children of
// the ancestor they refer to.
func (n *Node) Children() []*Node {
	if n.alias != nil {
		return n.alias.children
	}
	return n.children
}

// Child finds a named element or attribute below n. Indicator children are
// searched transparently.
func (n *Node) Child(name string) *Node {
	if n.alias != nil {
		return n.alias.Child(name)
	}
	if c, ok := n.named[name]; ok {
		return c
	}
	for _, c := range n.children {
		if c.IsIndicator() {
			if found := c.Child(name); found != nil {
				return found
			}
		}
	}
	return nil
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children()) == 0
}

// IsSimpleType reports whether instances carry character data, i.e. the
// type is neither complex nor any.
func (n *Node) IsSimpleType() bool {
	return n.dataType != Complex && n.dataType != Any
}

// Cardinality renders the occurrence bounds as "min", "min..max" or "min..n".
func (n *Node) Cardinality() string {
	if n.maxOccurs <= n.minOccurs {
		return strconv.Itoa(n.minOccurs)
	}
	if n.maxOccurs == Unbounded {
		return strconv.Itoa(n.minOccurs) + "..n"
	}
	return strconv.Itoa(n.minOccurs) + ".." + strconv.Itoa(n.maxOccurs)
}

func (n *Node) String() string {
	if n.IsIndicator() {
		return n.path + "[" + string(n.indicator) + " " + n.Cardinality() + "]"
	}
	s := n.path + " " + n.Cardinality() + " " + n.dataType.String()
	if n.IsRecursive() {
		s += " recursive"
	}
	return s
}

// definitionKey identifies the declaration a node was built from: the
// named type, or the element declaration carrying an anonymous type.
type definitionKey struct {
	typeName  string
	namespace string
	decl      *etree.Element
}

func (n *Node) definition() (definitionKey, bool) {
	if n.customType != "" {
		return definitionKey{typeName: n.customType, namespace: n.namespace}, true
	}
	if n.decl == nil {
		return definitionKey{}, false
	}
	return definitionKey{namespace: n.namespace, decl: n.decl}, true
}

func (n *Node) addChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
	if !c.IsIndicator() {
		n.named[c.name] = c
	}
	c.updatePath()
	c.checkRecursion()
	if !c.attribute && n.dataType != Complex && n.dataType != Mixed {
		n.dataType = Complex
	}
}

func (n *Node) updatePath() {
	base := ""
	if n.parent != nil {
		base = n.parent.path
	}
	switch {
	case n.IsIndicator():
		n.path = base
	case n.attribute:
		n.path = base + "/@" + n.name
	default:
		n.path = base + "/" + n.name
	}
	for _, c := range n.children {
		c.updatePath()
	}
}

// setAsRoot detaches n so its paths start from n.
func (n *Node) setAsRoot() {
	n.parent = nil
	n.updatePath()
}

// checkRecursion aliases n to the nearest ancestor built from the same
// declaration with the same name.
func (n *Node) checkRecursion() {
	wasAlias := n.alias != nil
	n.alias = nil
	if n.IsIndicator() || n.attribute || n.wildcard {
		return
	}
	def, ok := n.definition()
	for p := n.parent; ok && p != nil; p = p.parent {
		if p.IsIndicator() || p.attribute || p.name != n.name {
			continue
		}
		if pdef, ok := p.definition(); ok && pdef == def {
			n.alias = p
			n.dataType = p.dataType
			return
		}
	}
	if wasAlias {
		n.dataType = String
	}
}

func (n *Node) setCustomType(name string) {
	n.customType = name
	n.checkRecursion()
}

// setPrimitive applies a built-in XSD type. A primitive-typed node can not
// be recursive, so a tentative alias is dropped. Complex and mixed
// classifications are kept.
func (n *Node) setPrimitive(name string) {
	if n.alias != nil {
		n.alias = nil
		n.dataType = String
	}
	p := lookupPrimitive(name)
	if n.dataType != Complex && n.dataType != Mixed {
		n.dataType = p.dataType
	}
	n.placeholder = p.placeholder
	n.hasPlaceholder = p.placeholder != ""
}

func (n *Node) setMixed() {
	if n.dataType == Complex {
		n.dataType = Mixed
	}
}

func (n *Node) setDefault(v string) { n.defaultValue = &v }

func (n *Node) setFixed(v string) {
	n.fixedValue = &v
	n.defaultValue = &v
}

func (n *Node) setDocumentation(doc string) {
	if doc != "" {
		n.documentation = doc
	}
}

func (n *Node) addRestriction(facet, value string) {
	if n.restrictions == nil {
		n.restrictions = map[string]string{}
	}
	if prev, ok := n.restrictions[facet]; ok {
		n.restrictions[facet] = prev + "|" + value
		return
	}
	n.restrictions[facet] = value
}
