// Package metrics collects gateway metrics and exposes them in the
// Prometheus text exposition format (text/plain; version=0.0.4).
//
// Three metric types are supported:
//   - Counter: monotonically increasing value, such as request counts
//   - Gauge: value that can go up and down, such as in-flight requests
//   - Histogram: distribution of observations over fixed buckets
//
// Every metric is safe for concurrent use.
//
// # Usage
//
//	reg := metrics.NewRegistry()
//	requests := reg.NewCounter("rest2soap_requests_total", "REST requests handled", "service", "status")
//	vec, err := requests.WithLabels("getProduct", "200")
//	if err == nil {
//		_ = vec.Inc()
//	}
//	http.Handle("/metrics", reg.Handler())
package metrics
