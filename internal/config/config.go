package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/metricslog/internal/logger"
)

const (
	// DefaultFile is the metrics file written when none is configured.
	DefaultFile = "metrics.log"

	// DefaultInterval is the period between two metrics lines.
	DefaultInterval = time.Second
)

// Config represents the configuration of the metricslog program.
type Config struct {
	Collector CollectorConfig `toml:"collector" yaml:"collector"`
	Logging   logger.Config   `toml:"logging" yaml:"logging"`
}

// CollectorConfig configures where and how often metrics are written.
type CollectorConfig struct {
	File      string   `toml:"file" yaml:"file"`
	Interval  Duration `toml:"interval" yaml:"interval"`
	NameOrder bool     `toml:"name-order" yaml:"name-order"`
}

// NewConfig returns an instance of Config with defaults.
func NewConfig() *Config {
	return &Config{
		Collector: CollectorConfig{
			File:     DefaultFile,
			Interval: Duration(DefaultInterval),
		},
		Logging: logger.NewConfig(),
	}
}

// Validate returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.Collector.File == "" {
		return errors.New("collector: file must be set")
	}
	if c.Collector.Interval <= 0 {
		return errors.Errorf("collector: interval must be positive, got %s", c.Collector.Interval)
	}
	return nil
}

// Load parses the configuration file at path on top of the defaults.
// The format is chosen by extension: .toml, .yaml or .yml. ${VAR} references
// are expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	c := NewConfig()
	if err := c.decode(filepath.Ext(path), os.ExpandEnv(string(data))); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return c, nil
}

func (c *Config) decode(ext, data string) error {
	switch strings.ToLower(ext) {
	case ".toml":
		_, err := toml.Decode(data, c)
		return err
	case ".yaml", ".yml":
		return yaml.Unmarshal([]byte(data), c)
	default:
		return errors.Errorf("unsupported config format %q", ext)
	}
}

// Duration is a TOML and YAML wrapper type for time.Duration.
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText parses a duration formatted string such as "1s" or "500ms".
func (d *Duration) UnmarshalText(text []byte) error {
	// Ignore if there is no value set.
	if len(text) == 0 {
		return nil
	}

	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText converts a duration to a string.
func (d Duration) MarshalText() (text []byte, err error) {
	return []byte(d.String()), nil
}
