package metrics

import (
	"bytes"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	t.Run("without labels", func(t *testing.T) {
		c := NewRegistry().NewCounter("test_counter", "A test counter")
		require.NoError(t, c.Inc())
		require.NoError(t, c.Add(3))

		samples := c.Collect()
		require.Len(t, samples, 1)
		assert.Equal(t, 4.0, samples[0].Value)
		assert.Empty(t, samples[0].Labels)
	})

	t.Run("with labels", func(t *testing.T) {
		c := NewRegistry().NewCounter("requests", "Requests", "service", "status")
		for _, labels := range [][]string{{"getProduct", "200"}, {"placeOrder", "500"}, {"getProduct", "200"}} {
			vec, err := c.WithLabels(labels...)
			require.NoError(t, err)
			require.NoError(t, vec.Inc())
		}

		samples := c.Collect()
		require.Len(t, samples, 2)
		assert.Equal(t, []Label{{"service", "getProduct"}, {"status", "200"}}, samples[0].Labels)
		assert.Equal(t, 2.0, samples[0].Value)
		assert.Equal(t, 1.0, samples[1].Value)
	})

	t.Run("errors", func(t *testing.T) {
		c := NewRegistry().NewCounter("test", "test", "a", "b")
		_, err := c.WithLabels("only")
		assert.ErrorIs(t, err, ErrLabelCountMismatch)
		assert.ErrorIs(t, c.Inc(), ErrLabelCountMismatch)

		vec, err := c.WithLabels("x", "y")
		require.NoError(t, err)
		assert.ErrorIs(t, vec.Add(-1), ErrNegativeCounterValue)
	})
}

func TestGauge(t *testing.T) {
	g := NewRegistry().NewGauge("inflight", "In-flight requests", "service")
	vec, err := g.WithLabels("getProduct")
	require.NoError(t, err)
	vec.Inc()
	vec.Inc()
	vec.Dec()
	vec.Add(2.5)
	assert.Equal(t, 3.5, g.Collect()[0].Value)

	vec.Set(-1)
	assert.Equal(t, -1.0, g.Collect()[0].Value)

	assert.ErrorIs(t, g.Set(1), ErrLabelCountMismatch)
}

func TestHistogram(t *testing.T) {
	h := NewRegistry().NewHistogram("duration_seconds", "Durations", []float64{1, 0.1, 0.5}, "service")
	vec, err := h.WithLabels("getProduct")
	require.NoError(t, err)
	for _, v := range []float64{0.05, 0.3, 0.3, 2} {
		vec.Observe(v)
	}

	samples := h.Collect()
	require.Len(t, samples, 6)
	want := []struct {
		le    string
		count float64
	}{{"0.1", 1}, {"0.5", 3}, {"1", 3}, {"+Inf", 4}}
	for i, w := range want {
		assert.Equal(t, "duration_seconds_bucket", samples[i].Name)
		assert.Equal(t, Label{"le", w.le}, samples[i].Labels[1])
		assert.Equal(t, w.count, samples[i].Value, "le=%s", w.le)
	}
	assert.Equal(t, "duration_seconds_sum", samples[4].Name)
	assert.InDelta(t, 2.65, samples[4].Value, 1e-9)
	assert.Equal(t, "duration_seconds_count", samples[5].Name)
	assert.Equal(t, 4.0, samples[5].Value)
}

func TestHistogram_DefaultBuckets(t *testing.T) {
	h := NewRegistry().NewHistogram("d", "d", nil)
	require.NoError(t, h.Observe(0.002))
	assert.Len(t, h.Collect(), len(DefaultBuckets)+3)
}

func TestRegistry_WriteTo(t *testing.T) {
	r := NewRegistry()
	c := r.NewCounter("rest2soap_requests_total", "Requests\nhandled", "path")
	r.NewGauge("unused", "never set")
	vec, err := c.WithLabels(`/a"b\c`)
	require.NoError(t, err)
	require.NoError(t, vec.Add(2))
	require.NoError(t, r.NewGauge("up", "Up").Set(1))

	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, `# HELP rest2soap_requests_total Requests\nhandled
# TYPE rest2soap_requests_total counter
rest2soap_requests_total{path="/a\"b\\c"} 2
# HELP up Up
# TYPE up gauge
up 1
`, buf.String())
}

func TestRegistry_Duplicate(t *testing.T) {
	r := NewRegistry()
	r.NewCounter("dup", "first")
	assert.Panics(t, func() { r.NewGauge("dup", "second") })
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.NewCounter("hits", "Hits").Inc())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hits 1\n")
}

func TestConcurrentUpdates(t *testing.T) {
	r := NewRegistry()
	c := r.NewCounter("c", "c", "k")
	h := r.NewHistogram("h", "h", nil, "k")

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 100 {
				cv, _ := c.WithLabels("v")
				_ = cv.Inc()
				hv, _ := h.WithLabels("v")
				hv.Observe(0.01)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 800.0, c.Collect()[0].Value)
	samples := h.Collect()
	assert.Equal(t, 800.0, samples[len(samples)-1].Value)
}
