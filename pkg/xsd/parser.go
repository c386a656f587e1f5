package xsd

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/beevik/etree"
)

// XSDNamespace is the namespace of the XML Schema built-in types.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// XMLNamespace is the namespace bound to the reserved xml prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Parser builds Schema Node trees from one schema document and the
// documents it includes. Parsers are created through a Cache.
type Parser struct {
	location string
	source   DocumentSource
	cache    *Cache
	log      *slog.Logger

	targetNamespace    string
	elementQualified   bool
	attributeQualified bool
	prefixes           map[string]string
	imports            map[string]string
	included           map[string]bool

	types           map[string]*etree.Element
	elements        map[string]*etree.Element
	attributes      map[string]*etree.Element
	groups          map[string]*etree.Element
	attributeGroups map[string]*etree.Element

	mu    sync.RWMutex
	roots map[string]*Node
}

func newParser(ctx context.Context, location string, src DocumentSource, cache *Cache) (*Parser, error) {
	doc, err := src.Load(ctx, location)
	if err != nil {
		return nil, sourceError(location, err)
	}
	root := doc.Root()

	p := &Parser{
		location:        location,
		source:          src,
		cache:           cache,
		log:             cache.log,
		prefixes:        map[string]string{"xs": XSDNamespace, "xsd": XSDNamespace},
		imports:         map[string]string{},
		included:        map[string]bool{location: true},
		types:           map[string]*etree.Element{},
		elements:        map[string]*etree.Element{},
		attributes:      map[string]*etree.Element{},
		groups:          map[string]*etree.Element{},
		attributeGroups: map[string]*etree.Element{},
		roots:           map[string]*Node{},
	}
	for k, v := range src.Prefixes() {
		p.prefixes[k] = v
	}
	p.collectPrefixes(root, true)

	p.targetNamespace = root.SelectAttrValue("targetNamespace", "")
	p.elementQualified = root.SelectAttrValue("elementFormDefault", "") != "unqualified"
	p.attributeQualified = root.SelectAttrValue("attributeFormDefault", "") == "qualified"
	if _, ok := p.prefixes[""]; !ok && p.targetNamespace == "" {
		p.prefixes[""] = ""
	}

	if err := p.index(ctx, root, location); err != nil {
		return nil, err
	}
	return p, nil
}

// TargetNamespace returns the schema's targetNamespace.
func (p *Parser) TargetNamespace() string { return p.targetNamespace }

// Location returns the normalised location the parser was loaded from.
func (p *Parser) Location() string { return p.location }

// Elements returns the names of the global elements, in no particular order.
func (p *Parser) Elements() []string {
	names := make([]string, 0, len(p.elements))
	for name := range p.elements {
		names = append(names, name)
	}
	return names
}

// Parse returns the tree for a global element, or for an element nested
// below one when root is a slash separated path. Results are memoized.
func (p *Parser) Parse(ctx context.Context, root string) (*Node, error) {
	root = strings.TrimPrefix(root, "/")

	p.mu.RLock()
	n, ok := p.roots[root]
	p.mu.RUnlock()
	if ok {
		return n, nil
	}

	parts := strings.Split(root, "/")
	if _, ok := p.elements[parts[0]]; !ok {
		return nil, notFound(root, p.location)
	}
	n, err := p.newBuilder(ctx).globalElement(parts[0], nil, nil)
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		n = n.Child(part)
		if n == nil {
			return nil, notFound(root, p.location)
		}
	}
	n.setAsRoot()

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.roots[root]; ok {
		return existing, nil
	}
	p.roots[root] = n
	return n, nil
}

func (p *Parser) collectPrefixes(el *etree.Element, override bool) {
	for _, a := range el.Attr {
		var prefix string
		switch {
		case a.Space == "xmlns":
			prefix = a.Key
		case a.Space == "" && a.Key == "xmlns":
			prefix = ""
		default:
			continue
		}
		if _, exists := p.prefixes[prefix]; exists && !override {
			continue
		}
		p.prefixes[prefix] = a.Value
	}
}

// index records the top level declarations of a schema document and
// merges included documents into the same tables.
func (p *Parser) index(ctx context.Context, root *etree.Element, location string) error {
	base := baseLocation(location)
	for _, c := range root.ChildElements() {
		switch c.Tag {
		case "import":
			ns := c.SelectAttrValue("namespace", "")
			if loc := c.SelectAttrValue("schemaLocation", ""); loc != "" {
				p.imports[ns] = resolveLocation(base, loc)
			} else {
				p.imports[ns] = ns
			}
		case "include":
			loc, err := NormalizeLocation(resolveLocation(base, c.SelectAttrValue("schemaLocation", "")))
			if err != nil {
				return err
			}
			if p.included[loc] {
				continue
			}
			p.included[loc] = true
			doc, err := p.source.Load(ctx, loc)
			if err != nil {
				return sourceError(loc, err)
			}
			p.log.Debug("schema include", "location", loc, "into", p.location)
			p.collectPrefixes(doc.Root(), false)
			if err := p.index(ctx, doc.Root(), loc); err != nil {
				return err
			}
		case "complexType", "simpleType":
			p.types[c.SelectAttrValue("name", "")] = c
		case "element":
			p.elements[c.SelectAttrValue("name", "")] = c
		case "attribute":
			p.attributes[c.SelectAttrValue("name", "")] = c
		case "group":
			p.groups[c.SelectAttrValue("name", "")] = c
		case "attributeGroup":
			p.attributeGroups[c.SelectAttrValue("name", "")] = c
		}
	}
	return nil
}

func sourceError(location string, err error) error {
	var dse *DocumentSourceError
	if errors.As(err, &dse) {
		return err
	}
	return &DocumentSourceError{Location: location, Cause: err}
}
