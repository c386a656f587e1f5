package gateway

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mcsuka/xml-xsd-json/pkg/jsonschema"
)

// OpenAPI document info of the gateway.
const (
	OASTitle       = "Proxy Service"
	OASDescription = "Generated OAS Document"
	OASVersion     = "0.1"
)

// OpenAPI describes services as an OpenAPI document.
func OpenAPI(services []*Service, r *jsonschema.Renderer) *openapi3.T {
	endpoints := make([]jsonschema.Endpoint, 0, len(services))
	for _, svc := range services {
		endpoints = append(endpoints, svc.Endpoint(r))
	}
	return jsonschema.OpenAPI(OASTitle, OASDescription, OASVersion, endpoints)
}
