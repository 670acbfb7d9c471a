/*
Package metricslog provides concurrency-safe interval metrics that are periodically
written to a durable sink, one line per interval.

# Overview

The library is organized around three pieces:

1. Metrics: Counter (integer sum) and Average (running mean of float64 samples).
Both are safe for concurrent use by any number of goroutines without caller-side
locking. Counter updates are a single atomic add; Average guards its (sum, count)
pair with a short critical section so the two fields always move together.

2. Registry: a concurrent name -> Metric mapping. Registration is create-once and
fails with ErrAlreadyExists for a taken name. Lookups are typed and return
(nil, false) both for unknown names and for a name registered as another variant.

	r := metricslog.NewRegistry()
	requests, _ := r.RegisterCounter("HTTP requests RPS")
	cpu, _ := r.RegisterAverage("CPU")

	if c, ok := r.Counter("HTTP requests RPS"); ok {
	    c.Inc()
	}
	_, ok := r.Average("HTTP requests RPS") // false: registered as a counter

3. Collector: owns a Registry and a Sink and runs one background goroutine. Every
interval it drains all metrics (reads and resets each one atomically) and writes

	2024-01-15 10:30:00.123 "HTTP requests RPS" 42 "CPU" 0.87

to the sink. Metrics are reset after every flush, so an interval without samples
reports 0 for a Counter and 0.00 for an Average.

# Lifecycle

	c, err := metricslog.NewFileCollector("metrics.log", time.Second)
	if err != nil {
	    return err
	}
	requests, _ := c.RegisterCounter("HTTP requests RPS")
	if err := c.Start(); err != nil { // ErrSinkOpen when the file cannot be opened
	    return err
	}
	defer c.Close()

	requests.Add(3)

Start and Stop are idempotent and Stop may be called without Start. Stop wakes the
background goroutine immediately, waits for it to exit (a flush in progress is
completed, no final flush is made) and closes the sink. Stop must not be called
from inside a Sink's WriteLine.

# Sinks

FileSink appends to a file, WriterSink writes to any io.Writer and LoggerSink logs
each line through a zap logger. Any type implementing Sink can be used. Write
errors are logged through the collector's Logger and counted in Stats; they never
stop the flush loop.

# Logging

Registry and Collector log through the Logger interface, silent by default.
A *zap.SugaredLogger satisfies it:

	c, _ := metricslog.NewFileCollector(path, time.Second, metricslog.WithLogger(zapLogger.Sugar()))

# Testing

WithClock accepts a github.com/benbjohnson/clock Mock, which makes flushes and
timestamps deterministic:

	mock := clock.NewMock()
	c, _ := metricslog.NewCollector(sink, time.Second, metricslog.WithClock(mock))
	_ = c.Start()
	mock.Add(time.Second) // triggers one flush
*/
package metricslog
