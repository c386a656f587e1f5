package wsdl

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// Source serves the schemas embedded in a WSDL to an xsd.Parser. Its
// locations are target namespaces. A location that names no embedded
// schema is read as a file or URL, relative to the WSDL when it is not
// absolute.
type Source struct {
	defs   *Definitions
	client *http.Client
}

var (
	_ xsd.DocumentSource = (*Source)(nil)
	_ xsd.CacheKeyer     = (*Source)(nil)
)

// Source returns a document source over the embedded schemas.
func (d *Definitions) Source(opts ...Option) *Source {
	o := &options{client: http.DefaultClient}
	for _, opt := range opts {
		opt(o)
	}
	return &Source{defs: d, client: o.client}
}

// Load returns the embedded schema whose targetNamespace is location, as a
// document of its own.
func (s *Source) Load(ctx context.Context, location string) (*etree.Document, error) {
	if schema, ok := s.defs.schemas[location]; ok {
		doc := etree.NewDocument()
		doc.SetRoot(schema.Copy())
		return doc, nil
	}

	loc := location
	if !strings.Contains(loc, "://") && !strings.HasPrefix(loc, "/") {
		loc = s.relative(loc)
	}
	data, err := xsd.ReadLocation(ctx, s.client, loc)
	if err != nil {
		return nil, &xsd.DocumentSourceError{Location: location, Cause: err}
	}
	doc, err := xsd.ParseXML(data)
	if err != nil {
		return nil, &xsd.DocumentSourceError{Location: location, Cause: err}
	}
	return doc, nil
}

// Prefixes returns the prefixes declared on the definitions element. The
// default namespace is left out: it is normally the WSDL namespace and
// means nothing inside a schema.
func (s *Source) Prefixes() map[string]string {
	m := make(map[string]string, len(s.defs.prefixes))
	for k, v := range s.defs.prefixes {
		m[k] = v
	}
	return m
}

// CacheKey scopes namespaces to the WSDL, so that two WSDLs embedding the
// same namespace get separate parsers.
func (s *Source) CacheKey(location string) string {
	return s.defs.Location + "#" + location
}

func (s *Source) relative(ref string) string {
	base := s.defs.Location
	if i := strings.Index(base, "://"); i >= 0 && !strings.HasPrefix(base, "file://") {
		if j := strings.LastIndex(base, "/"); j > i+2 {
			return base[:j+1] + ref
		}
		return base + "/" + ref
	}
	base = strings.TrimPrefix(base, "file://")
	return path.Join(path.Dir(base), ref)
}

// ParseElement builds the schema tree of a global element declared in one
// of the embedded schemas, through cache.
func (d *Definitions) ParseElement(ctx context.Context, cache *xsd.Cache, element QName, opts ...Option) (*xsd.Node, error) {
	p, err := cache.Get(ctx, element.Namespace, d.Source(opts...))
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, element.Local)
}
