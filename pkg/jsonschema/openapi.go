package jsonschema

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPIVersion is the version of generated OpenAPI documents.
const OpenAPIVersion = "3.0.1"

// Parameter describes a request parameter of an endpoint. Schema holds
// OpenAPI schema keywords as strings; enum lists values separated by "|".
type Parameter struct {
	Name        string
	In          string
	Description string
	Required    bool
	MultiValue  bool
	Schema      map[string]string
}

// Endpoint describes one REST operation. A nil Request or Response schema
// is documented as a plain string.
type Endpoint struct {
	Path        string
	Method      string
	Description string
	Parameters  []Parameter
	Request     *openapi3.Schema
	Response    *openapi3.Schema
}

// OpenAPI builds an OpenAPI document with one operation per endpoint.
// Endpoints sharing a path share a path item.
func OpenAPI(title, description, version string, endpoints []Endpoint) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       title,
			Description: description,
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, ep := range endpoints {
		item := doc.Paths.Value(ep.Path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(ep.Path, item)
		}
		item.SetOperation(strings.ToUpper(ep.Method), operation(ep))
	}
	return doc
}

func operation(ep Endpoint) *openapi3.Operation {
	op := &openapi3.Operation{
		Description: ep.Description,
		Responses: openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Success Response").
				WithJSONSchema(orString(ep.Response)),
		})),
	}
	for _, p := range ep.Parameters {
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: parameter(p)})
	}
	if HasBody(ep.Method) {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request Body").
				WithJSONSchema(orString(ep.Request)),
		}
	}
	return op
}

// HasBody reports whether requests of method carry a JSON body, i.e. the
// method is POST, PUT or PATCH.
func HasBody(method string) bool {
	return strings.HasPrefix(strings.ToLower(method), "p")
}

func orString(s *openapi3.Schema) *openapi3.Schema {
	if s == nil {
		return openapi3.NewStringSchema()
	}
	return s
}

func parameter(p Parameter) *openapi3.Parameter {
	s := parameterSchema(p.Schema)
	if p.MultiValue && p.In == openapi3.ParameterInQuery {
		s = openapi3.NewArraySchema().WithItems(s)
	}
	return &openapi3.Parameter{
		Name:        p.Name,
		In:          p.In,
		Description: p.Description,
		Required:    p.Required,
		Schema:      openapi3.NewSchemaRef("", s),
	}
}

// parameterSchema converts schema keywords to a Schema. Numeric keywords
// that do not parse are dropped; unknown keywords are kept verbatim.
func parameterSchema(def map[string]string) *openapi3.Schema {
	s := &openapi3.Schema{}
	for k, v := range def {
		switch k {
		case "type":
			s.Type = &openapi3.Types{v}
		case "format":
			s.Format = v
		case "pattern":
			s.Pattern = v
		case "default":
			s.Default = v
		case "description":
			s.Description = v
		case "enum":
			for _, e := range strings.Split(v, "|") {
				s.Enum = append(s.Enum, e)
			}
		case "minimum":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				s.Min = &f
			}
		case "maximum":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				s.Max = &f
			}
		case "length":
			if l, err := strconv.ParseUint(v, 10, 64); err == nil {
				s.MinLength = l
				s.MaxLength = &l
			}
		case "minLength":
			if l, err := strconv.ParseUint(v, 10, 64); err == nil {
				s.MinLength = l
			}
		case "maxLength":
			if l, err := strconv.ParseUint(v, 10, 64); err == nil {
				s.MaxLength = &l
			}
		default:
			if s.Extensions == nil {
				s.Extensions = map[string]any{}
			}
			s.Extensions[k] = v
		}
	}
	return s
}
