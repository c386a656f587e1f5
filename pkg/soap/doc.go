// Package soap wraps and unwraps SOAP 1.1 and 1.2 messages.
//
// The gateway uses it on both sides of a backend call: request payloads
// produced by the JSON to XML translator are wrapped with Envelope, and
// backend responses are taken apart with ParseEnvelope.
//
// # Envelopes
//
// Generated envelopes bind the envelope namespace to the SOAP-ENV prefix
// and are serialised without whitespace between elements:
//
//	doc := soap.Envelope(payload, soap.SOAP11)
//	data, err := doc.WriteToBytes()
//
// # Actions
//
// ActionHeaders returns the headers carrying the operation's soapAction.
// SOAP 1.1 uses a quoted SOAPAction header, SOAP 1.2 an action parameter
// on the application/soap+xml content type.
//
// # Faults
//
// ParseEnvelope recognises faults of either version and maps them onto
// Fault. BuildFault produces complete fault messages.
package soap
