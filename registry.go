package metricslog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is a concurrent mapping from metric name to Metric.
// Names are unique for the lifetime of the registry; a metric, once
// registered, is never replaced or removed.
//
// Registration and lookups take a single lock over the mapping. Metric
// updates go through the returned handles and never touch that lock.
type Registry struct {
	cfg    *registryConfig
	logger Logger

	mu      sync.RWMutex
	metrics map[string]Metric
	order   []Metric // registration order
}

// NewRegistry constructs an empty Registry.
// Accepts optional functional options to customize behavior.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	l := cfg.logger
	if l == nil {
		l = newNoopLogger()
	}
	return &Registry{
		cfg:     cfg,
		logger:  l,
		metrics: make(map[string]Metric),
	}
}

// create constructs a new metric of type t.
func create(t MetricType, name string, cfg InstrumentConfig) Metric {
	switch t {
	case MetricTypeCounter:
		return newCounter(name, cfg)
	case MetricTypeAverage:
		return newAverage(name, cfg)
	default:
		return nil
	}
}

// Register creates a metric of type t under name and returns it.
// Names must be non-empty and fit on one line.
// It fails with ErrAlreadyExists if name is taken; the existing metric is
// left untouched.
func (r *Registry) Register(name string, t MetricType, opts ...InstrumentOption) (Metric, error) {
	if name == "" || strings.ContainsAny(name, "\r\n") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !t.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	// compute config off-lock
	m := create(t, name, applyOptions(opts))

	r.mu.Lock()
	if existing, ok := r.metrics[name]; ok {
		r.mu.Unlock()
		r.logger.Debugf("[metricslog] duplicate registration of %q (registered as %s)", name, existing.Type())
		return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	}
	r.metrics[name] = m
	r.order = append(r.order, m)
	r.mu.Unlock()

	r.logger.Debugf("[metricslog] registered %s %q", t, name)
	return m, nil
}

// RegisterCounter registers a Counter under name.
func (r *Registry) RegisterCounter(name string, opts ...InstrumentOption) (*Counter, error) {
	m, err := r.Register(name, MetricTypeCounter, opts...)
	if err != nil {
		return nil, err
	}
	return m.(*Counter), nil
}

// RegisterAverage registers an Average under name.
func (r *Registry) RegisterAverage(name string, opts ...InstrumentOption) (*Average, error) {
	m, err := r.Register(name, MetricTypeAverage, opts...)
	if err != nil {
		return nil, err
	}
	return m.(*Average), nil
}

// Lookup returns the metric registered under name, whatever its type.
func (r *Registry) Lookup(name string) (Metric, bool) {
	r.mu.RLock()
	m, ok := r.metrics[name]
	r.mu.RUnlock()
	return m, ok
}

// LookupAs returns the metric registered under name if it is of type T.
// A missing name and a type mismatch both yield the zero T and false.
//
//	c, ok := metricslog.LookupAs[*metricslog.Counter](r, "requests")
func LookupAs[T Metric](r *Registry, name string) (T, bool) {
	var zero T
	m, ok := r.Lookup(name)
	if !ok {
		return zero, false
	}
	v, ok := m.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Counter returns the Counter registered under name.
func (r *Registry) Counter(name string) (*Counter, bool) {
	return LookupAs[*Counter](r, name)
}

// Average returns the Average registered under name.
func (r *Registry) Average(name string) (*Average, bool) {
	return LookupAs[*Average](r, name)
}

// Metrics returns a point-in-time list of every registered metric in
// registry order. The list is copied under the lock so callers can iterate
// it while other goroutines keep registering.
func (r *Registry) Metrics() []Metric {
	r.mu.RLock()
	out := make([]Metric, len(r.order))
	copy(out, r.order)
	r.mu.RUnlock()

	if r.cfg.nameOrder {
		sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	}
	return out
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
