package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mcsuka/xml-xsd-json/internal/matching"
	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/jsonschema"
	"github.com/mcsuka/xml-xsd-json/pkg/logging"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
	"github.com/mcsuka/xml-xsd-json/pkg/wsdl"
	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// Service is a REST endpoint bound to a SOAP operation.
type Service struct {
	Config    config.Service
	Template  *matching.Template
	Operation wsdl.Operation

	// Request and Response are the schema trees of the SOAP bodies.
	// Response is nil for one-way operations.
	Request  *xsd.Node
	Response *xsd.Node

	toXML  *transcode.JSONToXML
	toJSON *transcode.XMLToJSON
}

// Name returns the configured service name.
func (s *Service) Name() string {
	return s.Config.Name
}

// Endpoint describes the service for the OpenAPI document.
func (s *Service) Endpoint(r *jsonschema.Renderer) jsonschema.Endpoint {
	ep := jsonschema.Endpoint{
		Path:        s.Config.RestPath,
		Method:      s.Config.RestMethod,
		Description: s.Config.Description,
	}
	for _, p := range s.Config.Parameters {
		ep.Parameters = append(ep.Parameters, jsonschema.Parameter{
			Name:        p.Name,
			In:          p.In,
			Description: p.Description,
			Required:    p.Required || p.In == config.InPath,
			MultiValue:  p.MultiValue,
			Schema:      p.Schema,
		})
	}
	if s.Request != nil {
		ep.Request = r.Schema(s.Request)
	}
	if s.Response != nil {
		ep.Response = r.Schema(s.Response)
	}
	return ep
}

// Loader builds services. WSDL documents and schema parsers are shared
// between the services it builds.
type Loader struct {
	cache    *xsd.Cache
	client   *http.Client
	fallback transcode.ChoiceFallback
	log      *slog.Logger

	mu   sync.Mutex
	defs map[string]*wsdl.Definitions
}

// NewLoader creates a loader. client fetches remote WSDL and XSD documents.
func NewLoader(cache *xsd.Cache, client *http.Client, fallback transcode.ChoiceFallback, log *slog.Logger) *Loader {
	if log == nil {
		log = logging.Nop()
	}
	if cache == nil {
		cache = xsd.NewCache(xsd.WithLogger(log))
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{
		cache:    cache,
		client:   client,
		fallback: fallback,
		log:      log,
		defs:     make(map[string]*wsdl.Definitions),
	}
}

// LoadAll builds the services in order.
func (l *Loader) LoadAll(ctx context.Context, services []config.Service) ([]*Service, error) {
	out := make([]*Service, 0, len(services))
	for _, sc := range services {
		svc, err := l.Load(ctx, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, nil
}

// Load builds a single service.
func (l *Loader) Load(ctx context.Context, sc config.Service) (*Service, error) {
	tmpl, err := matching.ParseTemplate(sc.RestPath)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", sc.Name, err)
	}
	defs, err := l.definitions(ctx, sc.WSDL)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", sc.Name, err)
	}
	op, err := defs.Operation(sc.Operation)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", sc.Name, err)
	}

	svc := &Service{Config: sc, Template: tmpl, Operation: op}
	opt := wsdl.WithHTTPClient(l.client)
	if svc.Request, err = defs.ParseElement(ctx, l.cache, op.Request, opt); err != nil {
		return nil, fmt.Errorf("service %s: request element %s: %w", sc.Name, op.Request, err)
	}
	if !op.Response.IsZero() {
		if svc.Response, err = defs.ParseElement(ctx, l.cache, op.Response, opt); err != nil {
			return nil, fmt.Errorf("service %s: response element %s: %w", sc.Name, op.Response, err)
		}
	}
	svc.toXML = transcode.NewJSONToXML(svc.Request, transcode.WithChoiceFallback(l.fallback))
	svc.toJSON = transcode.NewXMLToJSON(svc.Response, transcode.WithIgnoreAttributes(true))

	l.log.Debug("service loaded",
		"service", sc.Name,
		"method", sc.RestMethod,
		"path", sc.RestPath,
		"operation", op.Name,
		"soap_version", string(op.Version),
	)
	return svc, nil
}

func (l *Loader) definitions(ctx context.Context, location string) (*wsdl.Definitions, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d, ok := l.defs[location]; ok {
		return d, nil
	}
	d, err := wsdl.Load(ctx, location, wsdl.WithHTTPClient(l.client))
	if err != nil {
		return nil, err
	}
	l.defs[location] = d
	return d, nil
}
