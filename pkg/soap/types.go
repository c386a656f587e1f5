package soap

import (
	"errors"

	"github.com/beevik/etree"
)

// Version represents the SOAP protocol version.
type Version string

const (
	// SOAP11 represents SOAP 1.1 protocol.
	SOAP11 Version = "1.1"
	// SOAP12 represents SOAP 1.2 protocol.
	SOAP12 Version = "1.2"
)

// SOAP namespace URIs
const (
	SOAP11Namespace = "http://schemas.xmlsoap.org/soap/envelope/"
	SOAP12Namespace = "http://www.w3.org/2003/05/soap-envelope"
)

// ContentTypes for SOAP versions
const (
	SOAP11ContentType = "text/xml; charset=utf-8"
	SOAP12ContentType = "application/soap+xml; charset=utf-8"
)

// EnvelopePrefix is the prefix bound to the envelope namespace in
// generated messages.
const EnvelopePrefix = "SOAP-ENV"

// ErrMalformedMessage is returned when a message is not well formed XML.
var ErrMalformedMessage = errors.New("malformed SOAP message")

// Namespace returns the envelope namespace of the version.
func (v Version) Namespace() string {
	if v == SOAP12 {
		return SOAP12Namespace
	}
	return SOAP11Namespace
}

// ContentType returns the media type of the version, without action.
func (v Version) ContentType() string {
	if v == SOAP12 {
		return SOAP12ContentType
	}
	return SOAP11ContentType
}

// Fault is the content of a SOAP fault. SOAP 1.2 codes and reasons are
// mapped onto Code and String.
type Fault struct {
	Code   string `json:"faultcode" yaml:"faultcode"`
	String string `json:"faultstring" yaml:"faultstring"`
	Actor  string `json:"faultactor,omitempty" yaml:"faultactor,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Message is a parsed SOAP message. Documents that are not envelopes are
// returned with a nil Envelope and the document root as Payload.
type Message struct {
	Version  Version
	Envelope *etree.Element
	Header   *etree.Element
	Body     *etree.Element

	// Payload is the first element below Body.
	Payload *etree.Element

	// Fault is set when Payload is a SOAP fault.
	Fault *Fault
}

// IsEnvelope reports whether the message was wrapped in a SOAP envelope.
func (m *Message) IsEnvelope() bool {
	return m.Envelope != nil
}
