package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/mcsuka/xml-xsd-json/internal/id"
	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/soap"
)

// MaxResponseBodySize bounds SOAP response bodies read by the gateway.
const MaxResponseBodySize = 10 << 20 // 10MB

// NewHTTPClient creates the outbound client described by cfg.
func NewHTTPClient(cfg config.ClientConfig) *http.Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxConnsPerHost:     cfg.MaxPoolSize,
		MaxIdleConnsPerHost: cfg.MaxPoolSize,
		IdleConnTimeout:     cfg.KeepAlive,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}
}

// call posts a SOAP envelope to the service target and returns the status
// and body of the response.
func (g *Gateway) call(ctx context.Context, svc *Service, envelope []byte, correlationID string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.Config.TargetURL, bytes.NewReader(envelope))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	for k, v := range soap.ActionHeaders(svc.Operation.Version, svc.Operation.SOAPAction) {
		req.Header[k] = v
	}
	req.Header.Set(id.CorrelationHeader, correlationID)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodySize+1))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", ErrBackend, err)
	}
	if len(body) > MaxResponseBodySize {
		return 0, nil, fmt.Errorf("%w: response exceeds %d bytes", ErrBackend, MaxResponseBodySize)
	}
	return resp.StatusCode, body, nil
}
