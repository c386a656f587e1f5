// Package gateway exposes SOAP operations as REST endpoints.
//
// Each configured service binds an HTTP method and path template to a WSDL
// operation. A request is turned into a JSON document (body plus injected
// path, query and header parameters), translated to XML along the request
// schema, wrapped in a SOAP envelope and posted to the service target. The
// SOAP response is translated back to JSON along the response schema.
//
// The gateway also serves the OpenAPI description of its services at
// /oas.json and its metrics in Prometheus text format at /metrics.
package gateway
