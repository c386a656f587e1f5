package soap

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

// Envelope wraps payload in the Body of a SOAP envelope. The payload is
// moved into the returned document. A nil payload yields an empty Body.
func Envelope(payload *etree.Element, version Version) *etree.Document {
	doc := newDocument()
	env := doc.CreateElement(EnvelopePrefix + ":Envelope")
	env.CreateAttr("xmlns:"+EnvelopePrefix, version.Namespace())
	body := env.CreateElement(EnvelopePrefix + ":Body")
	if payload != nil {
		body.AddChild(payload)
	}
	return doc
}

// Marshal wraps payload with Envelope and serialises the result without
// indentation.
func Marshal(payload *etree.Element, version Version) ([]byte, error) {
	return Envelope(payload, version).WriteToBytes()
}

// ParseEnvelope parses a SOAP message. Any well formed document is
// accepted: when the root is not an envelope of a known version, the
// returned message carries only the root as Payload.
func ParseEnvelope(data []byte) (*Message, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedMessage)
	}

	version, ok := detectVersion(root)
	if !ok || root.Tag != "Envelope" {
		return &Message{Payload: root}, nil
	}

	m := &Message{Version: version, Envelope: root}
	for _, c := range root.ChildElements() {
		switch c.Tag {
		case "Header":
			m.Header = c
		case "Body":
			m.Body = c
		}
	}
	if m.Body != nil {
		if children := m.Body.ChildElements(); len(children) > 0 {
			m.Payload = children[0]
		}
	}
	if m.Payload != nil && m.Payload.Tag == "Fault" && m.Payload.NamespaceURI() == version.Namespace() {
		m.Fault = parseFault(m.Payload, version)
	}
	return m, nil
}

// detectVersion detects the SOAP version from the envelope namespace.
func detectVersion(root *etree.Element) (Version, bool) {
	switch root.NamespaceURI() {
	case SOAP11Namespace:
		return SOAP11, true
	case SOAP12Namespace:
		return SOAP12, true
	}
	return "", false
}

func parseFault(e *etree.Element, version Version) *Fault {
	f := &Fault{}
	for _, c := range e.ChildElements() {
		switch {
		case version == SOAP11 && c.Tag == "faultcode":
			f.Code = strings.TrimSpace(c.Text())
		case version == SOAP11 && c.Tag == "faultstring":
			f.String = strings.TrimSpace(c.Text())
		case version == SOAP11 && c.Tag == "faultactor":
			f.Actor = strings.TrimSpace(c.Text())
		case version == SOAP11 && c.Tag == "detail":
			f.Detail = innerXML(c)
		case version == SOAP12 && c.Tag == "Code":
			if v := c.SelectElement("Value"); v != nil {
				f.Code = strings.TrimSpace(v.Text())
			}
		case version == SOAP12 && c.Tag == "Reason":
			if t := c.SelectElement("Text"); t != nil {
				f.String = strings.TrimSpace(t.Text())
			}
		case version == SOAP12 && c.Tag == "Role":
			f.Actor = strings.TrimSpace(c.Text())
		case version == SOAP12 && c.Tag == "Detail":
			f.Detail = innerXML(c)
		}
	}
	return f
}

// innerXML returns the text of e, or its serialised child elements.
func innerXML(e *etree.Element) string {
	children := e.ChildElements()
	if len(children) == 0 {
		return strings.TrimSpace(e.Text())
	}
	doc := etree.NewDocument()
	for _, c := range children {
		doc.AddChild(c.Copy())
	}
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

// BuildFault builds a complete fault message. SOAP 1.1 Client and Server
// codes are mapped to Sender and Receiver for SOAP 1.2. A Detail that
// looks like XML is embedded as elements, otherwise as text.
func BuildFault(version Version, fault Fault) []byte {
	doc := newDocument()
	env := doc.CreateElement(EnvelopePrefix + ":Envelope")
	env.CreateAttr("xmlns:"+EnvelopePrefix, version.Namespace())
	f := env.CreateElement(EnvelopePrefix + ":Body").CreateElement(EnvelopePrefix + ":Fault")

	if version == SOAP12 {
		q := func(local string) string { return EnvelopePrefix + ":" + local }
		f.CreateElement(q("Code")).CreateElement(q("Value")).SetText(faultCode12(fault.Code))
		text := f.CreateElement(q("Reason")).CreateElement(q("Text"))
		text.CreateAttr("xml:lang", "en")
		text.SetText(fault.String)
		if fault.Actor != "" {
			f.CreateElement(q("Role")).SetText(fault.Actor)
		}
		if fault.Detail != "" {
			setDetail(f.CreateElement(q("Detail")), fault.Detail)
		}
	} else {
		f.CreateElement("faultcode").SetText(fault.Code)
		f.CreateElement("faultstring").SetText(fault.String)
		if fault.Actor != "" {
			f.CreateElement("faultactor").SetText(fault.Actor)
		}
		if fault.Detail != "" {
			setDetail(f.CreateElement("detail"), fault.Detail)
		}
	}

	b, err := doc.WriteToBytes()
	if err != nil {
		return nil
	}
	return b
}

func faultCode12(code string) string {
	local := code
	if i := strings.IndexByte(code, ':'); i >= 0 {
		local = code[i+1:]
	}
	switch local {
	case "Client":
		return EnvelopePrefix + ":Sender"
	case "Server":
		return EnvelopePrefix + ":Receiver"
	}
	return code
}

func setDetail(e *etree.Element, detail string) {
	if strings.HasPrefix(strings.TrimSpace(detail), "<") {
		frag := etree.NewDocument()
		if err := frag.ReadFromString("<detail>" + detail + "</detail>"); err == nil {
			for _, c := range frag.Root().ChildElements() {
				e.AddChild(c)
			}
			return
		}
	}
	e.SetText(detail)
}

// ActionHeaders returns the headers announcing a SOAP action: the
// SOAPAction header for SOAP 1.1, the action parameter of the content type
// for SOAP 1.2.
func ActionHeaders(version Version, action string) http.Header {
	h := http.Header{}
	if version == SOAP12 {
		ct := SOAP12ContentType
		if action != "" {
			ct += `; action="` + action + `"`
		}
		h.Set("Content-Type", ct)
		return h
	}
	h.Set("Content-Type", SOAP11ContentType)
	h.Set("SOAPAction", `"`+action+`"`)
	return h
}

// Action extracts the SOAP action from request headers.
func Action(h http.Header) string {
	if ct := h.Get("Content-Type"); strings.Contains(ct, "action=") {
		for _, part := range strings.Split(ct, ";") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, "action=") {
				return strings.Trim(strings.TrimPrefix(part, "action="), `"`)
			}
		}
	}
	return strings.Trim(h.Get("SOAPAction"), `"`)
}
