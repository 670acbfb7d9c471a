package metricslog

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// Counter is a thread-safe integer sum that is cleared on every flush.
type Counter struct {
	name string
	cfg  InstrumentConfig
	val  atomic.Int64
}

func newCounter(name string, cfg InstrumentConfig) *Counter {
	return &Counter{name: name, cfg: cfg}
}

// Name returns the registered name.
func (c *Counter) Name() string { return c.name }

// Type returns MetricTypeCounter.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// Config returns a copy of the metadata given at registration.
func (c *Counter) Config() InstrumentConfig { return copyConfig(c.cfg) }

// Add increments the counter by n (n may be negative but it's not recommended).
func (c *Counter) Add(n int64) { c.val.Add(n) }

// Inc increments the counter by one.
func (c *Counter) Inc() { c.val.Add(1) }

// Snapshot returns the current value.
func (c *Counter) Snapshot() int64 { return c.val.Load() }

// Format renders the current value as a decimal integer.
func (c *Counter) Format() string { return strconv.FormatInt(c.val.Load(), 10) }

// Reset sets the value back to zero.
func (c *Counter) Reset() { c.val.Store(0) }

func (c *Counter) drain() string { return strconv.FormatInt(c.val.Swap(0), 10) }

// Average is a thread-safe running mean of float64 samples.
// Sum and count always move together under mu.
type Average struct {
	name string
	cfg  InstrumentConfig

	mu    sync.Mutex
	sum   float64
	count int64
}

func newAverage(name string, cfg InstrumentConfig) *Average {
	return &Average{name: name, cfg: cfg}
}

// Name returns the registered name.
func (a *Average) Name() string { return a.name }

// Type returns MetricTypeAverage.
func (a *Average) Type() MetricType { return MetricTypeAverage }

// Config returns a copy of the metadata given at registration.
func (a *Average) Config() InstrumentConfig { return copyConfig(a.cfg) }

// Record adds a sample.
func (a *Average) Record(v float64) {
	a.mu.Lock()
	a.sum += v
	a.count++
	a.mu.Unlock()
}

// AverageSnapshot is an immutable snapshot of an Average.
type AverageSnapshot struct {
	Sum   float64
	Count int64
	Mean  float64
}

func newAverageSnapshot(sum float64, count int64) AverageSnapshot {
	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}
	return AverageSnapshot{Sum: sum, Count: count, Mean: mean}
}

// String renders the mean with two decimals, or 0.00 when empty.
func (s AverageSnapshot) String() string {
	return strconv.FormatFloat(s.Mean, 'f', 2, 64)
}

// Snapshot returns a copy of the state at the time of call.
func (a *Average) Snapshot() AverageSnapshot {
	a.mu.Lock()
	sum, count := a.sum, a.count
	a.mu.Unlock()
	return newAverageSnapshot(sum, count)
}

// Format renders the current mean with two decimals.
func (a *Average) Format() string { return a.Snapshot().String() }

// Reset clears sum and count in a single critical section.
func (a *Average) Reset() {
	a.mu.Lock()
	a.sum, a.count = 0, 0
	a.mu.Unlock()
}

func (a *Average) drain() string {
	a.mu.Lock()
	sum, count := a.sum, a.count
	a.sum, a.count = 0, 0
	a.mu.Unlock()
	return newAverageSnapshot(sum, count).String()
}
