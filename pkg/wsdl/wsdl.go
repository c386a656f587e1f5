package wsdl

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/mcsuka/xml-xsd-json/pkg/soap"
	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// Namespace URIs recognised in WSDL 1.1 documents.
const (
	Namespace              = "http://schemas.xmlsoap.org/wsdl/"
	SOAP11BindingNamespace = "http://schemas.xmlsoap.org/wsdl/soap/"
	SOAP12BindingNamespace = "http://schemas.xmlsoap.org/wsdl/soap12/"
)

// QName is a namespace qualified name.
type QName struct {
	Namespace string
	Local     string
}

// String formats the name in Clark notation, {namespace}local.
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// IsZero reports whether the name is empty.
func (q QName) IsZero() bool {
	return q.Local == ""
}

// Definitions is the parsed content of a WSDL 1.1 document.
type Definitions struct {
	Name            string
	TargetNamespace string
	Location        string
	Messages        []Message
	PortTypes       []PortType
	Bindings        []Binding
	Services        []Service

	prefixes map[string]string
	schemas  map[string]*etree.Element
}

// Message is a wsdl:message.
type Message struct {
	Name  string
	Parts []Part
}

// Part is a message part. Document style parts reference an element,
// rpc style parts a type.
type Part struct {
	Name    string
	Element QName
	Type    QName
}

// PortType is a wsdl:portType.
type PortType struct {
	Name       string
	Operations []PortTypeOperation
}

// PortTypeOperation is an abstract operation with its message names.
type PortTypeOperation struct {
	Name   string
	Input  QName
	Output QName
	Faults []QName
}

// Binding is a SOAP binding of a port type.
type Binding struct {
	Name       string
	Type       QName
	Version    soap.Version
	Style      string
	Transport  string
	Operations []BindingOperation
}

// BindingOperation carries the SOAP action of one operation.
type BindingOperation struct {
	Name       string
	SOAPAction string
	Style      string
}

// Service is a wsdl:service.
type Service struct {
	Name  string
	Ports []Port
}

// Port binds a binding to an address.
type Port struct {
	Name    string
	Binding QName
	Address string
}

// Option configures Load.
type Option func(*options)

type options struct {
	client *http.Client
}

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// Load reads and parses the WSDL document at location, which may be a file
// path, a file:// URL or an http(s):// URL.
func Load(ctx context.Context, location string, opts ...Option) (*Definitions, error) {
	o := &options{client: http.DefaultClient}
	for _, opt := range opts {
		opt(o)
	}
	data, err := xsd.ReadLocation(ctx, o.client, location)
	if err != nil {
		return nil, &Error{Location: location, Message: "failed to read WSDL", Cause: err}
	}
	return Parse(data, location)
}

// Parse parses a WSDL document. location identifies the document in
// errors and schema cache keys.
func Parse(data []byte, location string) (*Definitions, error) {
	doc, err := xsd.ParseXML(data)
	if err != nil {
		return nil, &Error{Location: location, Message: "failed to parse XML", Cause: err}
	}

	root := doc.Root()
	if root.Tag != "definitions" {
		return nil, &Error{
			Location: location,
			Message:  fmt.Sprintf("expected root element <definitions>, got <%s>", root.Tag),
		}
	}

	d := &Definitions{
		Name:            root.SelectAttrValue("name", ""),
		TargetNamespace: root.SelectAttrValue("targetNamespace", ""),
		Location:        location,
		prefixes:        map[string]string{},
		schemas:         map[string]*etree.Element{},
	}
	for _, a := range root.Attr {
		if a.Space == "xmlns" {
			d.prefixes[a.Key] = a.Value
		}
	}

	for _, typesEl := range findElements(root, "types") {
		for _, s := range findElements(typesEl, "schema") {
			ns := s.SelectAttrValue("targetNamespace", "")
			if _, dup := d.schemas[ns]; !dup {
				d.schemas[ns] = s
			}
		}
	}

	for _, msgEl := range findElements(root, "message") {
		msg := Message{Name: msgEl.SelectAttrValue("name", "")}
		for _, partEl := range findElements(msgEl, "part") {
			msg.Parts = append(msg.Parts, Part{
				Name:    partEl.SelectAttrValue("name", ""),
				Element: resolveQName(partEl, partEl.SelectAttrValue("element", "")),
				Type:    resolveQName(partEl, partEl.SelectAttrValue("type", "")),
			})
		}
		d.Messages = append(d.Messages, msg)
	}

	for _, ptEl := range findElements(root, "portType") {
		pt := PortType{Name: ptEl.SelectAttrValue("name", "")}
		for _, opEl := range findElements(ptEl, "operation") {
			op := PortTypeOperation{Name: opEl.SelectAttrValue("name", "")}
			if in := findElement(opEl, "input"); in != nil {
				op.Input = resolveQName(in, in.SelectAttrValue("message", ""))
			}
			if out := findElement(opEl, "output"); out != nil {
				op.Output = resolveQName(out, out.SelectAttrValue("message", ""))
			}
			for _, f := range findElements(opEl, "fault") {
				op.Faults = append(op.Faults, resolveQName(f, f.SelectAttrValue("message", "")))
			}
			pt.Operations = append(pt.Operations, op)
		}
		d.PortTypes = append(d.PortTypes, pt)
	}

	for _, bindEl := range findElements(root, "binding") {
		b := Binding{
			Name: bindEl.SelectAttrValue("name", ""),
			Type: resolveQName(bindEl, bindEl.SelectAttrValue("type", "")),
		}
		soapBind, version := findSOAPElement(bindEl, "binding")
		if soapBind == nil {
			// HTTP and MIME bindings carry no SOAP operations.
			continue
		}
		b.Version = version
		b.Style = soapBind.SelectAttrValue("style", "document")
		b.Transport = soapBind.SelectAttrValue("transport", "")
		for _, opEl := range findElements(bindEl, "operation") {
			bop := BindingOperation{Name: opEl.SelectAttrValue("name", ""), Style: b.Style}
			if soapOp, _ := findSOAPElement(opEl, "operation"); soapOp != nil {
				bop.SOAPAction = soapOp.SelectAttrValue("soapAction", "")
				bop.Style = soapOp.SelectAttrValue("style", b.Style)
			}
			b.Operations = append(b.Operations, bop)
		}
		d.Bindings = append(d.Bindings, b)
	}

	for _, svcEl := range findElements(root, "service") {
		svc := Service{Name: svcEl.SelectAttrValue("name", "")}
		for _, portEl := range findElements(svcEl, "port") {
			p := Port{
				Name:    portEl.SelectAttrValue("name", ""),
				Binding: resolveQName(portEl, portEl.SelectAttrValue("binding", "")),
			}
			if addr, _ := findSOAPElement(portEl, "address"); addr != nil {
				p.Address = addr.SelectAttrValue("location", "")
			}
			svc.Ports = append(svc.Ports, p)
		}
		d.Services = append(d.Services, svc)
	}

	return d, nil
}

// Operations returns the names of all port type operations, sorted.
func (d *Definitions) Operations() []string {
	seen := map[string]bool{}
	var names []string
	for _, pt := range d.PortTypes {
		for _, op := range pt.Operations {
			if !seen[op.Name] {
				seen[op.Name] = true
				names = append(names, op.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Namespaces returns the target namespaces of the embedded schemas,
// sorted.
func (d *Definitions) Namespaces() []string {
	names := make([]string, 0, len(d.schemas))
	for ns := range d.schemas {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

// Schema returns the embedded schema with the given target namespace.
func (d *Definitions) Schema(namespace string) (*etree.Element, bool) {
	s, ok := d.schemas[namespace]
	return s, ok
}

// Message returns the message with the given local name.
func (d *Definitions) Message(name string) (Message, bool) {
	for _, m := range d.Messages {
		if m.Name == name {
			return m, true
		}
	}
	return Message{}, false
}

// findElements returns all direct child elements matching the local name (ignoring namespace prefix).
func findElements(parent *etree.Element, localName string) []*etree.Element {
	var results []*etree.Element
	for _, child := range parent.ChildElements() {
		if child.Tag == localName {
			results = append(results, child)
		}
	}
	return results
}

// findElement returns the first direct child element matching the local name.
func findElement(parent *etree.Element, localName string) *etree.Element {
	elems := findElements(parent, localName)
	if len(elems) > 0 {
		return elems[0]
	}
	return nil
}

// findSOAPElement finds a SOAP binding extension element by local name and
// reports the SOAP version its namespace stands for.
func findSOAPElement(parent *etree.Element, localName string) (*etree.Element, soap.Version) {
	for _, child := range parent.ChildElements() {
		if child.Tag != localName {
			continue
		}
		switch child.NamespaceURI() {
		case SOAP11BindingNamespace:
			return child, soap.SOAP11
		case SOAP12BindingNamespace:
			return child, soap.SOAP12
		}
	}
	return nil, ""
}

// resolveQName resolves a prefixed attribute value against the namespace
// declarations in scope of e.
func resolveQName(e *etree.Element, value string) QName {
	if value == "" {
		return QName{}
	}
	prefix, local := "", value
	if i := strings.IndexByte(value, ':'); i >= 0 {
		prefix, local = value[:i], value[i+1:]
	}
	return QName{Namespace: lookupNamespace(e, prefix), Local: local}
}

func lookupNamespace(e *etree.Element, prefix string) string {
	key := "xmlns"
	if prefix != "" {
		key = "xmlns:" + prefix
	}
	for x := e; x != nil; x = x.Parent() {
		if a := x.SelectAttr(key); a != nil {
			return a.Value
		}
	}
	return ""
}
