package metricslog

// Metric is a named accumulator that the Collector can format and reset.
// The set of implementations is closed: *Counter and *Average.
// Methods must be safe for concurrent use.
//
// Format reads the current value without resetting it. Reset zeroes the
// accumulated state. The Collector does not call them separately; it drains
// each metric (read and reset as one atomic step) so that an update racing
// with a flush is counted in exactly one interval.
type Metric interface {
	Name() string
	Type() MetricType
	Config() InstrumentConfig
	Format() string
	Reset()

	// drain atomically reads, formats and resets the metric.
	drain() string
}

type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeAverage MetricType = "average"
)

func (t MetricType) String() string { return string(t) }

// valid reports whether t names one of the supported variants.
func (t MetricType) valid() bool {
	switch t {
	case MetricTypeCounter, MetricTypeAverage:
		return true
	default:
		return false
	}
}

// InstrumentConfig carries optional metric metadata. It's advisory only and
// is not written to the sink.
type InstrumentConfig struct {
	Description string
	Unit        string
	// Attributes are static key-value pairs associated with the metric itself.
	Attributes map[string]string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets an advisory description for the metric.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets an advisory unit for the metric (e.g., "1", "seconds").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

// WithAttributes attaches static attributes to the metric.
func WithAttributes(attrs map[string]string) InstrumentOption {
	return func(c *InstrumentConfig) {
		if len(attrs) == 0 {
			return
		}
		// copy to avoid external mutation
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

// applyOptions builds InstrumentConfig from options.
func applyOptions(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

// copyConfig makes a defensive copy of InstrumentConfig (copies Attributes map).
func copyConfig(in InstrumentConfig) InstrumentConfig {
	out := InstrumentConfig{Description: in.Description, Unit: in.Unit}
	if len(in.Attributes) > 0 {
		out.Attributes = make(map[string]string, len(in.Attributes))
		for k, v := range in.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}
