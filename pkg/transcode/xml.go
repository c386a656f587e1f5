package transcode

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	return doc
}

// ParseXML parses an XML document.
func ParseXML(data []byte) (*etree.Document, error) {
	doc, err := xsd.ParseXML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return doc, nil
}

// WriteXML serialises a document, optionally indented by two spaces.
func WriteXML(doc *etree.Document, indent bool) (string, error) {
	if indent {
		doc.Indent(2)
	}
	return doc.WriteToString()
}

func setText(e *etree.Element, s string) {
	if s != "" {
		e.SetText(s)
	}
}

// lookupNamespace returns the URI bound to prefix in scope of e.
func lookupNamespace(e *etree.Element, prefix string) string {
	for x := e; x != nil; x = x.Parent() {
		if a := x.SelectAttr("xmlns:" + prefix); a != nil {
			return a.Value
		}
	}
	return ""
}

// declareNamespace binds prefix on e unless it is already bound to uri in
// scope.
func declareNamespace(e *etree.Element, prefix, uri string) {
	if lookupNamespace(e, prefix) != uri {
		e.CreateAttr("xmlns:"+prefix, uri)
	}
}

func elementPath(e *etree.Element) string {
	path := ""
	for x := e; x != nil && x.Tag != ""; x = x.Parent() {
		path = "/" + x.Tag + path
	}
	return path
}
