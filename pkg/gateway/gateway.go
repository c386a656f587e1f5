package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mcsuka/xml-xsd-json/internal/id"
	"github.com/mcsuka/xml-xsd-json/internal/matching"
	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/httputil"
	"github.com/mcsuka/xml-xsd-json/pkg/jsonschema"
	"github.com/mcsuka/xml-xsd-json/pkg/logging"
	"github.com/mcsuka/xml-xsd-json/pkg/metrics"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// OASPath serves the OpenAPI document of the gateway.
const OASPath = "/oas.json"

// MaxRequestBodySize is the maximum allowed REST request body size (10MB).
const MaxRequestBodySize = 10 << 20

// Gateway is the http.Handler translating REST calls into SOAP calls.
type Gateway struct {
	services []*Service
	router   matching.Router[*Service]
	oas      []byte

	client  *http.Client
	cache   *xsd.Cache
	sem     *semaphore.Weighted
	gen     id.Generator
	metrics *gatewayMetrics
	log     *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// WithHTTPClient sets the client for SOAP calls and remote WSDL documents.
// It replaces the client built from the client configuration.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.client = c
	}
}

// WithIDGenerator sets the generator of correlation identifiers.
func WithIDGenerator(gen id.Generator) Option {
	return func(g *Gateway) {
		g.gen = gen
	}
}

// WithCache shares a schema parser cache with the gateway.
func WithCache(c *xsd.Cache) Option {
	return func(g *Gateway) {
		g.cache = c
	}
}

// WithMetrics records the gateway metrics in reg. Without it each gateway
// has a registry of its own.
func WithMetrics(reg *metrics.Registry) Option {
	return func(g *Gateway) {
		g.metrics = newGatewayMetrics(reg)
	}
}

// New loads the configured services and builds the gateway.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		gen: id.UUID,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = newGatewayMetrics(metrics.NewRegistry())
	}
	if g.client == nil {
		g.client = NewHTTPClient(cfg.Client)
	}
	if cfg.Server.MaxPoolSize > 0 {
		g.sem = semaphore.NewWeighted(int64(cfg.Server.MaxPoolSize))
	}

	fallback, err := transcode.ParseChoiceFallback(cfg.Translation.ChoiceFallback)
	if err != nil {
		return nil, err
	}
	loader := NewLoader(g.cache, g.client, fallback, g.log)
	if g.services, err = loader.LoadAll(ctx, cfg.Services); err != nil {
		return nil, err
	}
	for _, svc := range g.services {
		g.router.Add(svc.Config.RestMethod, svc.Template, svc)
	}

	doc := OpenAPI(g.services, jsonschema.NewRenderer(jsonschema.WithLogger(g.log)))
	if g.oas, err = json.MarshalIndent(doc, "", "  "); err != nil {
		return nil, fmt.Errorf("render OpenAPI document: %w", err)
	}

	_ = g.metrics.services.Set(float64(len(g.services)))
	g.log.Info("gateway ready", "services", len(g.services))
	return g, nil
}

// Services returns the loaded services in configuration order.
func (g *Gateway) Services() []*Service {
	return g.services
}

// ServeHTTP implements http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method == http.MethodGet {
		switch r.URL.Path {
		case OASPath:
			httputil.WriteRaw(w, http.StatusOK, httputil.ContentTypeJSON, g.oas)
			return
		case MetricsPath:
			g.metrics.registry.Handler().ServeHTTP(w, r)
			return
		}
	}

	g.metrics.inflightAdd(1)
	defer g.metrics.inflightAdd(-1)

	if g.sem != nil {
		if err := g.sem.Acquire(r.Context(), 1); err != nil {
			httputil.WriteServiceUnavailable(w, "request canceled while waiting for a worker")
			g.metrics.observeRequest(unmatched, r.Method, http.StatusServiceUnavailable, time.Since(start))
			return
		}
		defer g.sem.Release(1)
	}

	path := r.URL.EscapedPath()
	m, ok := g.router.Find(r.Method, path)
	if !ok {
		desc := fmt.Sprintf("no service for %s %s", r.Method, path)
		if misses := g.router.NearMisses(r.Method, path); len(misses) > 0 {
			httputil.WriteErrorWithDetails(w, http.StatusNotFound, httputil.CodeNotFound, desc, misses)
		} else {
			httputil.WriteNotFound(w, desc)
		}
		g.metrics.observeRequest(unmatched, r.Method, http.StatusNotFound, time.Since(start))
		g.log.Info("request", "method", r.Method, "path", path, "status", http.StatusNotFound,
			"duration", time.Since(start))
		return
	}

	svc := m.Route.Value
	cid := id.Correlation(r.Header, g.gen)
	w.Header().Set(id.CorrelationHeader, cid)
	status := g.serve(w, r, svc, m.Params, cid)
	g.metrics.observeRequest(svc.Name(), r.Method, status, time.Since(start))

	g.log.Info("request",
		"method", r.Method,
		"path", path,
		"operation", svc.Operation.Name,
		"status", status,
		"correlation_id", cid,
		"duration", time.Since(start),
	)
}

// serve handles a matched request and returns the status written.
func (g *Gateway) serve(w http.ResponseWriter, r *http.Request, svc *Service, pathParams map[string]string, cid string) int {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, httputil.CodeRequestTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", MaxRequestBodySize))
			return http.StatusRequestEntityTooLarge
		}
		httputil.WriteBadRequest(w, "failed to read request body: "+err.Error())
		return http.StatusBadRequest
	}

	resp, err := g.forward(r.Context(), svc, body, newRequestValues(r, pathParams), cid)
	switch {
	case errors.Is(err, ErrBadRequest):
		g.log.Warn("rejected request", "service", svc.Name(), "correlation_id", cid, "error", err)
		httputil.WriteBadRequest(w, err.Error())
		return http.StatusBadRequest
	case err != nil:
		g.log.Error("request failed", "service", svc.Name(), "correlation_id", cid, "error", err)
		httputil.WriteInternalError(w, err.Error())
		return http.StatusInternalServerError
	}
	httputil.WriteRaw(w, resp.Status, httputil.ContentTypeJSON, resp.Body)
	return resp.Status
}

// forward runs one REST call through svc: body and parameters to JSON, JSON
// to a SOAP envelope, the SOAP call, and the response back to JSON.
func (g *Gateway) forward(ctx context.Context, svc *Service, body []byte, values requestValues, cid string) (*Response, error) {
	v, err := parseBody(body)
	if err != nil {
		return nil, err
	}
	if v, err = injectParams(v, svc.Config.Parameters, values); err != nil {
		return nil, err
	}
	envelope, err := svc.BuildRequest(v)
	if err != nil {
		return nil, err
	}

	g.log.Debug("calling SOAP service",
		"service", svc.Name(),
		"target", svc.Config.TargetURL,
		"action", svc.Operation.SOAPAction,
		"correlation_id", cid,
		"bytes", len(envelope),
	)
	callStart := time.Now()
	status, data, err := g.call(ctx, svc, envelope, cid)
	g.metrics.observeSOAPCall(svc.Name(), time.Since(callStart))
	if err != nil {
		return nil, err
	}
	g.log.Debug("SOAP response", "service", svc.Name(), "status", status, "correlation_id", cid, "bytes", len(data))
	return svc.TranslateResponse(status, data)
}
