package metricslog

import (
	"time"

	"github.com/benbjohnson/clock"
)

type collectorConfig struct {
	registry *Registry
	clock    clock.Clock
	logger   Logger
	location *time.Location
}

// CollectorOption configures a Collector constructed by NewCollector.
type CollectorOption func(*collectorConfig)

// WithRegistry makes the collector flush r instead of a fresh registry.
func WithRegistry(r *Registry) CollectorOption {
	return func(cfg *collectorConfig) { cfg.registry = r }
}

// WithClock replaces the wall clock driving the flush ticker and timestamps.
// Tests pass a *clock.Mock.
func WithClock(c clock.Clock) CollectorOption {
	return func(cfg *collectorConfig) { cfg.clock = c }
}

// WithLogger sets the logger for lifecycle events and flush failures.
// When no registry is supplied the default registry logs through it too.
func WithLogger(l Logger) CollectorOption {
	return func(cfg *collectorConfig) { cfg.logger = l }
}

// WithLocation sets the time zone of line timestamps. Defaults to time.Local.
func WithLocation(loc *time.Location) CollectorOption {
	return func(cfg *collectorConfig) { cfg.location = loc }
}
