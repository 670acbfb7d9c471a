package metricslog

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Collector owns a Registry and periodically writes every metric's value to
// a Sink as one line, resetting the metrics for the next interval.
//
// A Collector is either stopped (initial state) or running. Start and Stop
// are idempotent, and Stop is safe to call without a prior Start, so the
// usual teardown is
//
//	c, err := metricslog.NewFileCollector("metrics.log", time.Second)
//	...
//	defer c.Close()
//
// Within one flush metrics are drained one after another, so a sample
// recorded mid-flush may land in the current interval for one metric and the
// next interval for another. No sample is ever lost or counted twice.
type Collector struct {
	registry *Registry
	sink     Sink
	interval time.Duration
	clock    clock.Clock
	logger   Logger
	location *time.Location

	// mu serializes Start and Stop.
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	flushes     atomic.Uint64
	writeErrors atomic.Uint64
	lastFlush   atomic.Pointer[time.Time]
}

// CollectorStats reports what the flush loop has done so far.
type CollectorStats struct {
	Flushes     uint64
	WriteErrors uint64
	LastFlush   time.Time // zero until the first flush
}

// NewCollector returns a stopped collector writing to sink every interval.
func NewCollector(sink Sink, interval time.Duration, opts ...CollectorOption) (*Collector, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	cfg := &collectorConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = newNoopLogger()
	}
	if cfg.registry == nil {
		cfg.registry = NewRegistry(WithRegistryLogger(cfg.logger))
	}
	if cfg.clock == nil {
		cfg.clock = clock.New()
	}
	if cfg.location == nil {
		cfg.location = time.Local
	}

	return &Collector{
		registry: cfg.registry,
		sink:     sink,
		interval: interval,
		clock:    cfg.clock,
		logger:   cfg.logger,
		location: cfg.location,
	}, nil
}

// NewFileCollector returns a stopped collector appending to the file at path.
func NewFileCollector(path string, interval time.Duration, opts ...CollectorOption) (*Collector, error) {
	return NewCollector(NewFileSink(path), interval, opts...)
}

// Registry returns the registry flushed by the collector.
func (c *Collector) Registry() *Registry { return c.registry }

// RegisterCounter registers a Counter in the collector's registry.
func (c *Collector) RegisterCounter(name string, opts ...InstrumentOption) (*Counter, error) {
	return c.registry.RegisterCounter(name, opts...)
}

// RegisterAverage registers an Average in the collector's registry.
func (c *Collector) RegisterAverage(name string, opts ...InstrumentOption) (*Average, error) {
	return c.registry.RegisterAverage(name, opts...)
}

// Counter looks up a Counter in the collector's registry.
func (c *Collector) Counter(name string) (*Counter, bool) { return c.registry.Counter(name) }

// Average looks up an Average in the collector's registry.
func (c *Collector) Average(name string) (*Average, bool) { return c.registry.Average(name) }

// Interval returns the flush interval.
func (c *Collector) Interval() time.Duration { return c.interval }

// Running reports whether the flush loop is active.
func (c *Collector) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Stats returns flush counters.
func (c *Collector) Stats() CollectorStats {
	s := CollectorStats{
		Flushes:     c.flushes.Load(),
		WriteErrors: c.writeErrors.Load(),
	}
	if t := c.lastFlush.Load(); t != nil {
		s.LastFlush = *t
	}
	return s
}

// Start opens the sink and launches the flush loop. It does nothing if the
// collector is already running. A sink that cannot be opened is reported as
// an error wrapping ErrSinkOpen and leaves the collector stopped.
func (c *Collector) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	if err := c.sink.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkOpen, err)
	}

	// the ticker exists before Start returns, so the first interval is
	// measured from here
	ticker := c.clock.Ticker(c.interval)
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.running = true
	go c.run(ticker, c.stop, c.done)

	c.logger.Infof("[metricslog] collector started, interval %s, %d metrics", c.interval, c.registry.Len())
	return nil
}

// Stop signals the flush loop, waits for it to exit and closes the sink.
// A flush in progress completes first; no final flush is performed.
// Stop on a stopped collector returns nil.
//
// Stop must not be called from a Sink's WriteLine: it would wait for itself.
func (c *Collector) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}

	close(c.stop)
	<-c.done
	c.running = false

	if err := c.sink.Close(); err != nil {
		c.logger.Errorf("[metricslog] closing sink: %v", err)
		return fmt.Errorf("close metrics sink: %w", err)
	}
	c.logger.Infof("[metricslog] collector stopped after %d flushes", c.flushes.Load())
	return nil
}

// Close stops the collector. It implements io.Closer.
func (c *Collector) Close() error { return c.Stop() }

func (c *Collector) run(ticker *clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// a stop that raced with the tick wins
			select {
			case <-stop:
				return
			default:
			}
			c.flush()
		}
	}
}

// flush performs one cycle: timestamp, drain every metric in registry order,
// write one line. Metrics are reset by the drain whatever the write outcome.
func (c *Collector) flush() {
	now := c.clock.Now()

	metrics := c.registry.Metrics()
	values := make([]Value, len(metrics))
	for i, m := range metrics {
		values[i] = Value{Name: m.Name(), Value: m.drain()}
	}

	line := FormatLine(now.In(c.location), values)
	if err := c.write(line); err != nil {
		c.writeErrors.Add(1)
		c.logger.Errorf("[metricslog] writing metrics line: %v", err)
	}

	c.flushes.Add(1)
	c.lastFlush.Store(&now)
}

// write hands line to the sink. A panicking sink is turned into an error so
// the flush loop survives it.
func (c *Collector) write(line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return c.sink.WriteLine(line)
}
