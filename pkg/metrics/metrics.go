package metrics

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when the number of label values does not
// match the label names of the metric.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when a counter would decrease.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrDuplicateMetric is returned when a metric name is registered twice.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// DefaultBuckets are the histogram buckets for durations in seconds.
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// MetricType is the TYPE of a metric family.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is implemented by every metric family.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	// Collect returns the samples of the family, ordered by label values.
	Collect() []Sample
}

// Sample is one exposition line.
type Sample struct {
	Name   string
	Labels []Label
	Value  float64
}

// Label is a name/value pair of a sample.
type Label struct {
	Name  string
	Value string
}

// atomicFloat64 stores the bits of a float64 for lock-free updates.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		if a.bits.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+delta)) {
			return
		}
	}
}

// family holds the per-label-set children of one metric.
type family[T any] struct {
	name       string
	help       string
	labelNames []string

	mu       sync.RWMutex
	children map[string]*child[T]
	newValue func() *T
}

type child[T any] struct {
	labels []Label
	value  *T
}

func (f *family[T]) init(name, help string, labelNames []string, newValue func() *T) {
	f.name = name
	f.help = help
	f.labelNames = labelNames
	f.children = make(map[string]*child[T])
	f.newValue = newValue
}

// Name returns the metric name.
func (f *family[T]) Name() string { return f.name }

// Help returns the help text.
func (f *family[T]) Help() string { return f.help }

func (f *family[T]) get(values []string) (*T, error) {
	if len(values) != len(f.labelNames) {
		return nil, fmt.Errorf("%w: %s expects %d labels, got %d", ErrLabelCountMismatch, f.name, len(f.labelNames), len(values))
	}
	key := strings.Join(values, "\x00")

	f.mu.RLock()
	c, ok := f.children[key]
	f.mu.RUnlock()
	if ok {
		return c.value, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok = f.children[key]; !ok {
		labels := make([]Label, len(values))
		for i, name := range f.labelNames {
			labels[i] = Label{Name: name, Value: values[i]}
		}
		c = &child[T]{labels: labels, value: f.newValue()}
		f.children[key] = c
	}
	return c.value, nil
}

// sorted returns the children ordered by label values.
func (f *family[T]) sorted() []*child[T] {
	f.mu.RLock()
	keys := make([]string, 0, len(f.children))
	for k := range f.children {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]*child[T], len(keys))
	for i, k := range keys {
		out[i] = f.children[k]
	}
	f.mu.RUnlock()
	return out
}

// Counter is a monotonically increasing metric.
type Counter struct {
	family[atomicFloat64]
}

// CounterVec is the counter of one label combination.
type CounterVec struct {
	v *atomicFloat64
}

// Type returns MetricTypeCounter.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// WithLabels returns the counter for the label values.
func (c *Counter) WithLabels(values ...string) (*CounterVec, error) {
	v, err := c.get(values)
	if err != nil {
		return nil, err
	}
	return &CounterVec{v: v}, nil
}

// Inc increments a counter without labels.
func (c *Counter) Inc() error {
	return c.Add(1)
}

// Add adds delta to a counter without labels.
func (c *Counter) Add(delta float64) error {
	vec, err := c.WithLabels()
	if err != nil {
		return err
	}
	return vec.Add(delta)
}

// Collect implements Metric.
func (c *Counter) Collect() []Sample {
	children := c.sorted()
	samples := make([]Sample, len(children))
	for i, ch := range children {
		samples[i] = Sample{Name: c.name, Labels: ch.labels, Value: ch.value.Load()}
	}
	return samples
}

// Inc increments the counter by 1.
func (v *CounterVec) Inc() error {
	return v.Add(1)
}

// Add adds delta to the counter.
func (v *CounterVec) Add(delta float64) error {
	if delta < 0 {
		return ErrNegativeCounterValue
	}
	v.v.Add(delta)
	return nil
}

// Gauge is a metric that can go up and down.
type Gauge struct {
	family[atomicFloat64]
}

// GaugeVec is the gauge of one label combination.
type GaugeVec struct {
	v *atomicFloat64
}

// Type returns MetricTypeGauge.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// WithLabels returns the gauge for the label values.
func (g *Gauge) WithLabels(values ...string) (*GaugeVec, error) {
	v, err := g.get(values)
	if err != nil {
		return nil, err
	}
	return &GaugeVec{v: v}, nil
}

// Set sets a gauge without labels.
func (g *Gauge) Set(value float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Set(value)
	return nil
}

// Collect implements Metric.
func (g *Gauge) Collect() []Sample {
	children := g.sorted()
	samples := make([]Sample, len(children))
	for i, ch := range children {
		samples[i] = Sample{Name: g.name, Labels: ch.labels, Value: ch.value.Load()}
	}
	return samples
}

// Set sets the gauge.
func (v *GaugeVec) Set(value float64) { v.v.Store(value) }

// Inc adds 1 to the gauge.
func (v *GaugeVec) Inc() { v.v.Add(1) }

// Dec subtracts 1 from the gauge.
func (v *GaugeVec) Dec() { v.v.Add(-1) }

// Add adds delta to the gauge.
func (v *GaugeVec) Add(delta float64) { v.v.Add(delta) }

// Histogram tracks the distribution of observations.
type Histogram struct {
	family[histogramValue]
	buckets []float64
}

type histogramValue struct {
	counts []atomic.Uint64 // per bucket, not cumulative
	sum    atomicFloat64
	count  atomic.Uint64
}

// HistogramVec is the histogram of one label combination.
type HistogramVec struct {
	buckets []float64
	v       *histogramValue
}

// Type returns MetricTypeHistogram.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// WithLabels returns the histogram for the label values.
func (h *Histogram) WithLabels(values ...string) (*HistogramVec, error) {
	v, err := h.get(values)
	if err != nil {
		return nil, err
	}
	return &HistogramVec{buckets: h.buckets, v: v}, nil
}

// Observe records value in a histogram without labels.
func (h *Histogram) Observe(value float64) error {
	vec, err := h.WithLabels()
	if err != nil {
		return err
	}
	vec.Observe(value)
	return nil
}

// Collect implements Metric. Bucket counts are cumulative and end with the
// +Inf bucket.
func (h *Histogram) Collect() []Sample {
	children := h.sorted()
	samples := make([]Sample, 0, len(children)*(len(h.buckets)+2))
	for _, ch := range children {
		var cumulative uint64
		for i, bound := range h.buckets {
			cumulative += ch.value.counts[i].Load()
			labels := append(slices.Clone(ch.labels), Label{Name: "le", Value: formatFloat(bound)})
			samples = append(samples, Sample{Name: h.name + "_bucket", Labels: labels, Value: float64(cumulative)})
		}
		samples = append(samples,
			Sample{Name: h.name + "_sum", Labels: ch.labels, Value: ch.value.sum.Load()},
			Sample{Name: h.name + "_count", Labels: ch.labels, Value: float64(ch.value.count.Load())},
		)
	}
	return samples
}

// Observe records value.
func (v *HistogramVec) Observe(value float64) {
	for i, bound := range v.buckets {
		if value <= bound {
			v.v.counts[i].Add(1)
			break
		}
	}
	v.v.sum.Add(value)
	v.v.count.Add(1)
}

// normalizeBuckets sorts the bounds and appends +Inf when missing.
func normalizeBuckets(buckets []float64) []float64 {
	out := slices.Clone(buckets)
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 || !math.IsInf(out[len(out)-1], 1) {
		out = append(out, math.Inf(1))
	}
	return out
}
