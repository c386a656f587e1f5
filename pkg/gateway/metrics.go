package gateway

import (
	"strconv"
	"time"

	"github.com/mcsuka/xml-xsd-json/pkg/metrics"
)

// MetricsPath serves the gateway metrics in Prometheus text format.
const MetricsPath = "/metrics"

// unmatched is the service label of requests no service serves.
const unmatched = "none"

// gatewayMetrics are the metric families the gateway records.
type gatewayMetrics struct {
	registry *metrics.Registry
	requests *metrics.Counter
	duration *metrics.Histogram
	soapCall *metrics.Histogram
	inflight *metrics.Gauge
	services *metrics.Gauge
}

func newGatewayMetrics(reg *metrics.Registry) *gatewayMetrics {
	return &gatewayMetrics{
		registry: reg,
		requests: reg.NewCounter("rest2soap_requests_total",
			"REST requests handled, by service and HTTP status.", "service", "method", "status"),
		duration: reg.NewHistogram("rest2soap_request_duration_seconds",
			"Time to handle a REST request, including the SOAP call.", nil, "service"),
		soapCall: reg.NewHistogram("rest2soap_soap_call_duration_seconds",
			"Time spent in outbound SOAP calls.", nil, "service"),
		inflight: reg.NewGauge("rest2soap_inflight_requests",
			"REST requests currently being handled."),
		services: reg.NewGauge("rest2soap_services",
			"Services loaded from the configuration."),
	}
}

func (m *gatewayMetrics) observeRequest(service, method string, status int, d time.Duration) {
	if vec, err := m.requests.WithLabels(service, method, strconv.Itoa(status)); err == nil {
		_ = vec.Inc()
	}
	if vec, err := m.duration.WithLabels(service); err == nil {
		vec.Observe(d.Seconds())
	}
}

func (m *gatewayMetrics) observeSOAPCall(service string, d time.Duration) {
	if vec, err := m.soapCall.WithLabels(service); err == nil {
		vec.Observe(d.Seconds())
	}
}

func (m *gatewayMetrics) inflightAdd(delta float64) {
	if vec, err := m.inflight.WithLabels(); err == nil {
		vec.Add(delta)
	}
}
