// Package promobs exports observability metrics to Prometheus.
//
// Counters and histograms become CounterVec and HistogramVec collectors
// registered on demand. Dots in metric names turn into underscores, and the
// label set of each metric is fixed by the attributes of its first use: later
// observations fill missing labels with "" and drop unknown ones. Tracing and
// logging are delegated to a wrapped observability.Provider.
package promobs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leofalp/sqlcopilot/providers/observability"
)

// Observer implements observability.Provider with Prometheus metrics.
type Observer struct {
	observability.Tracer
	observability.Logger

	factory promauto.Factory

	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

var _ observability.Provider = (*Observer)(nil)

// New returns an Observer registering its collectors on registerer and
// delegating spans and logs to base.
func New(base observability.Provider, registerer prometheus.Registerer) *Observer {
	return &Observer{
		Tracer:     base,
		Logger:     base,
		factory:    promauto.With(registerer),
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
}

// Counter returns the CounterVec-backed counter for name.
func (o *Observer) Counter(name string) observability.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.counters[name]
	if !ok {
		c = &counter{name: name, factory: o.factory}
		o.counters[name] = c
	}
	return c
}

// Histogram returns the HistogramVec-backed histogram for name.
func (o *Observer) Histogram(name string) observability.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.histograms[name]
	if !ok {
		h = &histogram{name: name, factory: o.factory}
		o.histograms[name] = h
	}
	return h
}

type counter struct {
	name    string
	factory promauto.Factory

	once   sync.Once
	labels []string
	vec    *prometheus.CounterVec
}

func (c *counter) Add(_ context.Context, value int64, attrs ...observability.Attribute) {
	c.once.Do(func() {
		c.labels = labelNames(attrs)
		c.vec = c.factory.NewCounterVec(prometheus.CounterOpts{
			Name: MetricName(c.name),
			Help: fmt.Sprintf("Counter %s.", c.name),
		}, c.labels)
	})
	if value < 0 {
		return
	}
	c.vec.WithLabelValues(labelValues(c.labels, attrs)...).Add(float64(value))
}

type histogram struct {
	name    string
	factory promauto.Factory

	once   sync.Once
	labels []string
	vec    *prometheus.HistogramVec
}

func (h *histogram) Record(_ context.Context, value float64, attrs ...observability.Attribute) {
	h.once.Do(func() {
		h.labels = labelNames(attrs)
		h.vec = h.factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricName(h.name),
			Help:    fmt.Sprintf("Histogram %s.", h.name),
			Buckets: prometheus.DefBuckets,
		}, h.labels)
	})
	h.vec.WithLabelValues(labelValues(h.labels, attrs)...).Observe(value)
}

// MetricName converts a dotted metric name to Prometheus form.
func MetricName(name string) string {
	return sanitize(name)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

func labelNames(attrs []observability.Attribute) []string {
	names := make([]string, 0, len(attrs))
	seen := make(map[string]bool, len(attrs))
	for _, attr := range attrs {
		name := sanitize(attr.Key)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func labelValues(labels []string, attrs []observability.Attribute) []string {
	byName := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		byName[sanitize(attr.Key)] = fmt.Sprint(attr.Value)
	}
	values := make([]string, len(labels))
	for i, label := range labels {
		values[i] = byName[label]
	}
	return values
}
