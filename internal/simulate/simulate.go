// Package simulate generates synthetic load against a metrics registry: a
// number of workers count "requests" and sample "CPU" utilization at a fixed
// period until their context is canceled.
package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/metricslog"
)

// Metric names updated by the workers.
const (
	RequestsMetric = "HTTP requests RPS"
	CPUMetric      = "CPU"
)

// Config controls the simulated load.
type Config struct {
	Workers int
	// Period is the pause between two updates of one worker.
	Period time.Duration

	// Each update adds a uniform random count in [MinRequests, MaxRequests].
	MinRequests, MaxRequests int64
	// Each update records a uniform random sample in [MinCPU, MaxCPU).
	MinCPU, MaxCPU float64

	Clock clock.Clock
}

// DefaultConfig returns four workers updating every 200ms with 1 to 3
// requests and CPU samples between 0.4 and 1.6.
func DefaultConfig() Config {
	return Config{
		Workers:     4,
		Period:      200 * time.Millisecond,
		MinRequests: 1,
		MaxRequests: 3,
		MinCPU:      0.4,
		MaxCPU:      1.6,
	}
}

func (c Config) validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	case c.Period <= 0:
		return fmt.Errorf("period must be positive, got %s", c.Period)
	case c.MinRequests < 0 || c.MaxRequests < c.MinRequests:
		return fmt.Errorf("invalid request range [%d, %d]", c.MinRequests, c.MaxRequests)
	case c.MaxCPU < c.MinCPU:
		return fmt.Errorf("invalid cpu range [%g, %g)", c.MinCPU, c.MaxCPU)
	}
	return nil
}

// Register registers the metrics updated by the workers.
func Register(r *metricslog.Registry) error {
	if _, err := r.RegisterCounter(RequestsMetric, metricslog.WithUnit("requests")); err != nil {
		return err
	}
	_, err := r.RegisterAverage(CPUMetric, metricslog.WithUnit("cores"))
	return err
}

// Run starts the workers and blocks until ctx is done or a worker fails.
// Workers look their metrics up once; a missing metric is an error.
func Run(ctx context.Context, r *metricslog.Registry, cfg Config, log *zap.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 1; i <= cfg.Workers; i++ {
		id := i
		g.Go(func() error {
			return work(ctx, r, cfg, id, log.With(zap.Int("worker", id)))
		})
	}
	return g.Wait()
}

func work(ctx context.Context, r *metricslog.Registry, cfg Config, id int, log *zap.Logger) error {
	requests, ok := r.Counter(RequestsMetric)
	if !ok {
		return fmt.Errorf("worker %d: counter %q not registered", id, RequestsMetric)
	}
	cpu, ok := r.Average(CPUMetric)
	if !ok {
		return fmt.Errorf("worker %d: average %q not registered", id, CPUMetric)
	}

	rng := rand.New(rand.NewPCG(uint64(id), uint64(cfg.Clock.Now().UnixNano())))
	ticker := cfg.Clock.Ticker(cfg.Period)
	defer ticker.Stop()

	log.Debug("Worker started")
	defer log.Debug("Worker finished")
	for {
		requests.Add(cfg.MinRequests + rng.Int64N(cfg.MaxRequests-cfg.MinRequests+1))
		cpu.Record(cfg.MinCPU + rng.Float64()*(cfg.MaxCPU-cfg.MinCPU))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
