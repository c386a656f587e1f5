// Package wsdl reads WSDL 1.1 documents.
//
// It resolves operations to their soapAction, SOAP version and request and
// response root elements, and exposes the schemas embedded in the types
// section as an xsd.DocumentSource addressed by target namespace:
//
//	defs, err := wsdl.Load(ctx, "service.wsdl")
//	op, err := defs.Operation("PlaceOrder")
//	req, err := defs.ParseElement(ctx, cache, op.Request)
//
// WSDL 2.0 documents are rejected.
package wsdl
