package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ygrebnov/metricslog"
	"github.com/ygrebnov/metricslog/internal/config"
	"github.com/ygrebnov/metricslog/internal/simulate"
)

// stdoutFile makes the collector write lines to standard output.
const stdoutFile = "-"

type runOptions struct {
	cfg      *config.Config
	sim      simulate.Config
	duration time.Duration
	// logSink sends metrics lines through the application logger.
	logSink bool
}

func newRunCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate synthetic load and log its metrics until interrupted",
		Args:  cobra.NoArgs,
	}

	defaults := config.NewConfig()
	sim := simulate.DefaultConfig()
	flags := cmd.Flags()
	flags.String("config", "", "path to a TOML or YAML config file")
	flags.String("file", defaults.Collector.File, `metrics file, "-" for standard output`)
	flags.Duration("interval", time.Duration(defaults.Collector.Interval), "period between two metrics lines")
	flags.Bool("name-order", false, "write metrics sorted by name instead of registration order")
	flags.Bool("log-sink", false, "write metrics lines to the application log")
	flags.Int("workers", sim.Workers, "number of load generating workers")
	flags.Duration("period", sim.Period, "pause between two updates of one worker")
	flags.Duration("duration", 0, "stop after this long, 0 runs until interrupted")
	flags.String("log-level", defaults.Logging.Level.String(), "application log level")
	flags.String("log-format", defaults.Logging.Format, "application log format: auto, console, json or logfmt")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if _, err := config.LoadEnvFiles("."); err != nil {
			return err
		}
		opts, err := resolveRunOptions(cmd, v)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return run(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	return cmd
}

// resolveRunOptions layers explicit flags and environment variables over the
// config file, which is layered over the defaults.
func resolveRunOptions(cmd *cobra.Command, v *viper.Viper) (*runOptions, error) {
	cfg := config.NewConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	explicit := func(key string) bool {
		if cmd.Flags().Changed(key) {
			return true
		}
		_, ok := os.LookupEnv(envName(key))
		return ok
	}
	if explicit("file") {
		cfg.Collector.File = v.GetString("file")
	}
	if explicit("interval") {
		cfg.Collector.Interval = config.Duration(v.GetDuration("interval"))
	}
	if explicit("name-order") {
		cfg.Collector.NameOrder = v.GetBool("name-order")
	}
	if explicit("log-format") {
		cfg.Logging.Format = v.GetString("log-format")
	}
	if explicit("log-level") {
		if err := cfg.Logging.Level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sim := simulate.DefaultConfig()
	sim.Workers = v.GetInt("workers")
	sim.Period = v.GetDuration("period")
	return &runOptions{
		cfg:      cfg,
		sim:      sim,
		duration: v.GetDuration("duration"),
		logSink:  v.GetBool("log-sink"),
	}, nil
}

func run(ctx context.Context, o *runOptions, stdout, stderr io.Writer) error {
	log, err := o.cfg.Logging.New(stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("run_id", uuid.NewString()))

	regOpts := []metricslog.RegistryOption{metricslog.WithRegistryLogger(log.Sugar())}
	if o.cfg.Collector.NameOrder {
		regOpts = append(regOpts, metricslog.WithNameOrder())
	}
	registry := metricslog.NewRegistry(regOpts...)
	if err := simulate.Register(registry); err != nil {
		return err
	}

	collector, err := metricslog.NewCollector(
		o.sink(stdout, log),
		time.Duration(o.cfg.Collector.Interval),
		metricslog.WithRegistry(registry),
		metricslog.WithLogger(log.Sugar()),
	)
	if err != nil {
		return err
	}
	if err := collector.Start(); err != nil {
		return err
	}

	if o.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.duration)
		defer cancel()
	}
	log.Info("Generating load",
		zap.Int("workers", o.sim.Workers),
		zap.Duration("period", o.sim.Period),
		zap.Duration("duration", o.duration))

	err = simulate.Run(ctx, registry, o.sim, log)
	err = multierr.Append(err, collector.Stop())

	stats := collector.Stats()
	log.Info("Stopped",
		zap.Uint64("flushes", stats.Flushes),
		zap.Uint64("write_errors", stats.WriteErrors))
	return err
}

func (o *runOptions) sink(stdout io.Writer, log *zap.Logger) metricslog.Sink {
	switch {
	case o.logSink:
		return metricslog.NewLoggerSink(log)
	case o.cfg.Collector.File == stdoutFile:
		return metricslog.NewWriterSink(stdout)
	default:
		return metricslog.NewFileSink(o.cfg.Collector.File)
	}
}
