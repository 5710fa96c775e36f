// Package metrics provides Prometheus-compatible metrics for the event
// subsystem.
//
// Features:
//   - Counters for intakes, coalesces, flushes, and upstream failures
//   - Gauges for buffered records
//   - Histograms for flush batch size and dispatch duration
//   - Optional HTTP endpoint for scraping
//   - Thread-safe operations
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Labels represents metric labels.
type Labels map[string]string

// String renders labels in exposition-format order.
func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(l))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s=%q`, k, l[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Metric is anything the registry can expose.
type Metric interface {
	Name() string
	Help() string
	write(w io.Writer)
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name   string
	help   string
	labels Labels
	value  atomic.Uint64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.value.Add(1) }

// Add adds v to the counter.
func (c *Counter) Add(v uint64) { c.value.Add(v) }

// Value returns the current value.
func (c *Counter) Value() uint64 { return c.value.Load() }

// Name returns the metric name.
func (c *Counter) Name() string { return c.name }

// Help returns the help text.
func (c *Counter) Help() string { return c.help }

func (c *Counter) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s%s %d\n",
		c.name, c.help, c.name, c.name, c.labels, c.Value())
}

// Gauge is a value that can go up and down.
type Gauge struct {
	name   string
	help   string
	labels Labels
	value  atomic.Int64
}

// Set stores v.
func (g *Gauge) Set(v int64) { g.value.Store(v) }

// Inc increments the gauge by 1.
func (g *Gauge) Inc() { g.value.Add(1) }

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() { g.value.Add(-1) }

// Add adds v to the gauge.
func (g *Gauge) Add(v int64) { g.value.Add(v) }

// Value returns the current value.
func (g *Gauge) Value() int64 { return g.value.Load() }

// Name returns the metric name.
func (g *Gauge) Name() string { return g.name }

// Help returns the help text.
func (g *Gauge) Help() string { return g.help }

func (g *Gauge) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s%s %d\n",
		g.name, g.help, g.name, g.name, g.labels, g.Value())
}

// DefaultBuckets suit small-count distributions such as batch sizes.
var DefaultBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

// DurationBuckets suit duration histograms, in seconds.
var DurationBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// Histogram tracks the distribution of values.
type Histogram struct {
	name    string
	help    string
	labels  Labels
	buckets []float64

	mu     sync.Mutex
	counts []uint64
	sum    float64
	count  uint64
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += v
	h.count++
	idx := sort.SearchFloat64s(h.buckets, v)
	for i := idx; i < len(h.counts); i++ {
		h.counts[i]++
	}
}

// ObserveDuration records a duration in seconds.
func (h *Histogram) ObserveDuration(d time.Duration) { h.Observe(d.Seconds()) }

// Count returns the number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Sum returns the sum of observed values.
func (h *Histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

// Name returns the metric name.
func (h *Histogram) Name() string { return h.name }

// Help returns the help text.
func (h *Histogram) Help() string { return h.help }

func (h *Histogram) write(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	for i, b := range h.buckets {
		labels := mergeLabels(h.labels, "le", fmt.Sprintf("%g", b))
		fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, labels, h.counts[i])
	}
	inf := mergeLabels(h.labels, "le", "+Inf")
	fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, inf, h.counts[len(h.counts)-1])
	fmt.Fprintf(w, "%s_sum%s %g\n", h.name, h.labels, h.sum)
	fmt.Fprintf(w, "%s_count%s %d\n", h.name, h.labels, h.count)
}

func mergeLabels(l Labels, k, v string) Labels {
	out := make(Labels, len(l)+1)
	for lk, lv := range l {
		out[lk] = lv
	}
	out[k] = v
	return out
}

// Registry holds registered metrics and renders them in Prometheus text
// exposition format.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	byName  map[string]Metric
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Metric)}
}

var (
	defaultRegistry *Registry
	registryOnce    sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	registryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func (r *Registry) register(m Metric) Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[m.Name()]; ok {
		return existing
	}
	r.metrics = append(r.metrics, m)
	r.byName[m.Name()] = m
	return m
}

// RegisterCounter registers (or returns the existing) counter with the name.
func (r *Registry) RegisterCounter(name, help string, labels Labels) *Counter {
	return r.register(&Counter{name: name, help: help, labels: labels}).(*Counter)
}

// RegisterGauge registers (or returns the existing) gauge with the name.
func (r *Registry) RegisterGauge(name, help string, labels Labels) *Gauge {
	return r.register(&Gauge{name: name, help: help, labels: labels}).(*Gauge)
}

// RegisterHistogram registers (or returns the existing) histogram with the
// name. Nil buckets selects DefaultBuckets.
func (r *Registry) RegisterHistogram(name, help string, labels Labels, buckets []float64) *Histogram {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	sorted := make([]float64, len(buckets))
	copy(sorted, buckets)
	sort.Float64s(sorted)
	h := &Histogram{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: sorted,
		counts:  make([]uint64, len(sorted)+1),
	}
	return r.register(h).(*Histogram)
}

// WriteTo renders every registered metric in exposition format.
func (r *Registry) WriteTo(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.metrics {
		m.write(w)
	}
}

// Handler returns an HTTP handler that serves the registry.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.WriteTo(w)
	})
}

// Serve starts an HTTP server exposing the registry at /metrics on addr.
// The caller owns shutdown.
func (r *Registry) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
