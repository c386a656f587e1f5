package xsd

import (
	"context"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// facets are the restriction children recorded on a node.
var facets = map[string]bool{
	"enumeration":    true,
	"pattern":        true,
	"length":         true,
	"minLength":      true,
	"maxLength":      true,
	"minInclusive":   true,
	"maxInclusive":   true,
	"minExclusive":   true,
	"maxExclusive":   true,
	"totalDigits":    true,
	"fractionDigits": true,
}

type occurs struct {
	min, max int
}

// builder expands declarations of one Parser into nodes. A builder lives
// for a single Parse call.
type builder struct {
	ctx context.Context
	p   *Parser
}

func (p *Parser) newBuilder(ctx context.Context) *builder {
	return &builder{ctx: ctx, p: p}
}

// foreign returns a builder for the schema that owns namespace ns.
func (b *builder) foreign(ns string) (*builder, error) {
	loc, ok := b.p.imports[ns]
	if !ok {
		return nil, invalid("namespace %q is not imported by %s", ns, b.p.location)
	}
	other, err := b.p.cache.Get(b.ctx, loc, b.p.source)
	if err != nil {
		return nil, err
	}
	b.p.log.Debug("schema import resolved", "namespace", ns, "location", other.location)
	return other.newBuilder(b.ctx), nil
}

func (b *builder) resolveQName(qname string) (ns, local string, err error) {
	prefix, local := "", qname
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		prefix, local = qname[:i], qname[i+1:]
	}
	ns, ok := b.p.prefixes[prefix]
	if !ok {
		if prefix == "" {
			return b.p.targetNamespace, local, nil
		}
		return "", "", invalid("unknown prefix %q in %q", prefix, qname)
	}
	return ns, local, nil
}

func (b *builder) globalElement(name string, parent *Node, occ *occurs) (*Node, error) {
	x, ok := b.p.elements[name]
	if !ok {
		return nil, invalid("element %q is not declared in %s", name, b.p.location)
	}
	return b.element(x, parent, true, occ)
}

func (b *builder) element(x *etree.Element, parent *Node, global bool, occ *occurs) (*Node, error) {
	bounds, err := occursOf(x)
	if err != nil {
		return nil, err
	}
	if ref := x.SelectAttrValue("ref", ""); ref != "" {
		ns, local, err := b.resolveQName(ref)
		if err != nil {
			return nil, err
		}
		if ns == b.p.targetNamespace {
			return b.globalElement(local, parent, &bounds)
		}
		other, err := b.foreign(ns)
		if err != nil {
			return nil, err
		}
		return other.globalElement(local, parent, &bounds)
	}

	name := x.SelectAttrValue("name", "")
	if name == "" {
		return nil, invalid("element without name or ref in %s", b.p.location)
	}
	qualified := b.p.elementQualified || global
	if form := x.SelectAttrValue("form", ""); form != "" {
		qualified = form == "qualified"
	}
	if global && occ != nil {
		bounds = *occ
	}

	n := newElement(name, b.p.targetNamespace, qualified, bounds.min, bounds.max)
	n.decl = x
	if a := x.SelectAttr("fixed"); a != nil {
		n.setFixed(a.Value)
	} else if a := x.SelectAttr("default"); a != nil {
		n.setDefault(a.Value)
	}
	if parent != nil {
		parent.addChild(n)
	}

	if t := x.SelectAttrValue("type", ""); t != "" {
		if err := b.applyType(t, n); err != nil {
			return nil, err
		}
	} else if !n.IsRecursive() {
		if err := b.appendChildren(x, n); err != nil {
			return nil, err
		}
	} else {
		b.p.log.Debug("recursive definition", "path", n.Path())
	}
	n.setDocumentation(documentation(x))
	return n, nil
}

func (b *builder) appendChildren(x *etree.Element, n *Node) error {
	for _, c := range x.ChildElements() {
		if err := b.appendChild(c, n); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) appendChild(c *etree.Element, n *Node) error {
	switch c.Tag {
	case "restriction":
		return b.restriction(c, n)
	case "extension":
		if base := c.SelectAttrValue("base", ""); base != "" {
			if err := b.applyType(base, n); err != nil {
				return err
			}
		}
		if n.IsRecursive() {
			return nil
		}
		return b.appendChildren(c, n)
	case "attribute":
		return b.attribute(c, n)
	case "attributeGroup":
		return b.reference(c, n, (*builder).attributeGroup)
	case "group":
		return b.reference(c, n, (*builder).group)
	case "sequence", "choice", "all":
		return b.indicator(c, n)
	case "element":
		_, err := b.element(c, n, false, nil)
		return err
	case "any":
		return b.any(c, n)
	case "anyAttribute":
		n.addChild(newWildcard(true, b.p.targetNamespace, b.p.attributeQualified, 0, Unbounded))
		return nil
	case "simpleType", "simpleContent":
		return b.appendChildren(c, n)
	case "complexType", "complexContent":
		if err := b.appendChildren(c, n); err != nil {
			return err
		}
		if c.SelectAttrValue("mixed", "") == "true" {
			n.setMixed()
		}
	}
	return nil
}

func (b *builder) restriction(c *etree.Element, n *Node) error {
	builtinBase := true
	if base := c.SelectAttrValue("base", ""); base != "" {
		ns, _, err := b.resolveQName(base)
		if err != nil {
			return err
		}
		builtinBase = ns == XSDNamespace
		if err := b.applyType(base, n); err != nil {
			return err
		}
	}
	for _, f := range c.ChildElements() {
		switch {
		case facets[f.Tag]:
			n.addRestriction(f.Tag, f.SelectAttrValue("value", ""))
		case builtinBase && !n.IsRecursive():
			if err := b.appendChild(f, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) indicator(c *etree.Element, parent *Node) error {
	bounds, err := occursOf(c)
	if err != nil {
		return err
	}
	ind := newIndicator(Indicator(c.Tag), bounds.min, bounds.max)
	parent.addChild(ind)
	for _, gc := range c.ChildElements() {
		switch gc.Tag {
		case "element":
			if _, err := b.element(gc, ind, false, nil); err != nil {
				return err
			}
		case "group":
			if err := b.reference(gc, ind, (*builder).group); err != nil {
				return err
			}
		case "sequence", "choice", "all":
			if err := b.indicator(gc, ind); err != nil {
				return err
			}
		case "any":
			if err := b.any(gc, ind); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) any(c *etree.Element, parent *Node) error {
	bounds, err := occursOf(c)
	if err != nil {
		return err
	}
	parent.addChild(newWildcard(false, b.p.targetNamespace, false, bounds.min, bounds.max))
	return nil
}

func (b *builder) attribute(c *etree.Element, parent *Node) error {
	if ref := c.SelectAttrValue("ref", ""); ref != "" {
		return b.attributeRef(c, ref, parent)
	}
	name := c.SelectAttrValue("name", "")
	if name == "" {
		return invalid("attribute without name or ref in %s", b.p.location)
	}
	qualified := b.p.attributeQualified
	if form := c.SelectAttrValue("form", ""); form != "" {
		qualified = form == "qualified"
	}
	return b.declareAttribute(c, c, name, qualified, parent)
}

// soapEncodingNamespace holds soapenc:arrayType of rpc/encoded arrays.
const soapEncodingNamespace = "http://schemas.xmlsoap.org/soap/encoding/"

// attributeRef expands a reference to a global attribute. Global
// attributes are always qualified.
func (b *builder) attributeRef(site *etree.Element, ref string, parent *Node) error {
	prefix, _, _ := strings.Cut(ref, ":")
	if prefix == "xml" {
		return nil
	}
	ns, local, err := b.resolveQName(ref)
	if err != nil {
		return err
	}
	if ns == XMLNamespace || ns == soapEncodingNamespace {
		b.p.log.Debug("attribute reference skipped", "ref", ref, "path", parent.Path())
		return nil
	}
	owner := b
	if ns != b.p.targetNamespace {
		if owner, err = b.foreign(ns); err != nil {
			return err
		}
	}
	decl, ok := owner.p.attributes[local]
	if !ok {
		return invalid("attribute %q is not declared in %s", local, owner.p.location)
	}
	return owner.declareAttribute(decl, site, local, true, parent)
}

// declareAttribute builds an attribute node from its declaration decl.
// The use site carries use and may override fixed and default values.
func (b *builder) declareAttribute(decl, site *etree.Element, name string, qualified bool, parent *Node) error {
	minOccurs, maxOccurs := 0, 1
	switch site.SelectAttrValue("use", "") {
	case "required":
		minOccurs = 1
	case "prohibited":
		maxOccurs = 0
	}

	a := newAttribute(name, b.p.targetNamespace, qualified, minOccurs, maxOccurs)
	for _, x := range []*etree.Element{site, decl} {
		if v := x.SelectAttr("fixed"); v != nil {
			a.setFixed(v.Value)
			break
		} else if v := x.SelectAttr("default"); v != nil {
			a.setDefault(v.Value)
			break
		}
	}
	parent.addChild(a)

	if t := decl.SelectAttrValue("type", ""); t != "" {
		if err := b.applyType(t, a); err != nil {
			return err
		}
	} else if err := b.appendChildren(decl, a); err != nil {
		return err
	}
	doc := documentation(site)
	if doc == "" {
		doc = documentation(decl)
	}
	a.setDocumentation(doc)
	return nil
}

// reference resolves the ref attribute of a group or attributeGroup and
// splices the referenced definition into parent.
func (b *builder) reference(c *etree.Element, parent *Node, splice func(*builder, string, *Node) error) error {
	ref := c.SelectAttrValue("ref", "")
	if ref == "" {
		return invalid("%s without ref in %s", c.Tag, b.p.location)
	}
	ns, local, err := b.resolveQName(ref)
	if err != nil {
		return err
	}
	if ns == b.p.targetNamespace {
		return splice(b, local, parent)
	}
	other, err := b.foreign(ns)
	if err != nil {
		return err
	}
	return splice(other, local, parent)
}

func (b *builder) group(name string, parent *Node) error {
	g, ok := b.p.groups[name]
	if !ok {
		return invalid("group %q is not declared in %s", name, b.p.location)
	}
	return b.appendChildren(g, parent)
}

func (b *builder) attributeGroup(name string, parent *Node) error {
	g, ok := b.p.attributeGroups[name]
	if !ok {
		return invalid("attributeGroup %q is not declared in %s", name, b.p.location)
	}
	return b.appendChildren(g, parent)
}

// applyType resolves a type name: built-in types set the scalar type,
// named types are expanded into n.
func (b *builder) applyType(typeName string, n *Node) error {
	ns, local, err := b.resolveQName(typeName)
	if err != nil {
		return err
	}
	switch ns {
	case XSDNamespace:
		n.setPrimitive(local)
		return nil
	case b.p.targetNamespace:
		return b.localType(local, n)
	}
	other, err := b.foreign(ns)
	if err != nil {
		return err
	}
	return other.localType(local, n)
}

func (b *builder) localType(name string, n *Node) error {
	x, ok := b.p.types[name]
	if !ok {
		return invalid("type %q is not declared in %s", name, b.p.location)
	}
	n.setCustomType(name)
	n.setDocumentation(documentation(x))
	if n.IsRecursive() {
		b.p.log.Debug("recursive definition", "path", n.Path(), "type", name)
		return nil
	}
	if err := b.appendChildren(x, n); err != nil {
		return err
	}
	if x.Tag == "complexType" && x.SelectAttrValue("mixed", "") == "true" {
		n.setMixed()
	}
	return nil
}

func occursOf(x *etree.Element) (occurs, error) {
	o := occurs{min: 1, max: 1}
	if v := x.SelectAttrValue("minOccurs", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return o, invalid("minOccurs %q", v)
		}
		o.min = n
	}
	switch v := x.SelectAttrValue("maxOccurs", ""); v {
	case "":
	case "unbounded":
		o.max = Unbounded
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return o, invalid("maxOccurs %q", v)
		}
		o.max = n
	}
	if o.max < o.min {
		return o, invalid("maxOccurs %d is less than minOccurs %d", o.max, o.min)
	}
	return o, nil
}

func documentation(x *etree.Element) string {
	for _, a := range x.ChildElements() {
		if a.Tag != "annotation" {
			continue
		}
		for _, d := range a.ChildElements() {
			if d.Tag == "documentation" {
				return strings.TrimSpace(d.Text())
			}
		}
	}
	return ""
}
