package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/storebind/internal/errors"
)

const (
	// ConfigFileName is the preferred configuration file.
	ConfigFileName = "storebind.yaml"

	// JSONConfigFileName is read when ConfigFileName is absent.
	JSONConfigFileName = "storebind.json"

	// DefaultDevtoolsAddr is where the devtools server listens.
	DefaultDevtoolsAddr = "127.0.0.1:7070"

	// DefaultNamespace is the metrics namespace.
	DefaultNamespace = "storebind"

	// DefaultMaxPasses bounds passes per flush.
	DefaultMaxPasses = 100

	// DefaultInterval is the demo dispatch interval.
	DefaultInterval = 500 * time.Millisecond

	// DefaultAppends is how many actions the demo dispatches.
	DefaultAppends = 10
)

// ErrNotFound is wrapped by Load when no configuration file exists.
var ErrNotFound = stderrors.New("config: no configuration file")

// Config is the complete storebind configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" json:"log"`
	Devtools  DevtoolsConfig  `yaml:"devtools" json:"devtools"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing" json:"tracing"`
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`
	Demo      DemoConfig      `yaml:"demo" json:"demo"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" json:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format" json:"format,omitempty"`
}

// DevtoolsConfig contains devtools server settings.
type DevtoolsConfig struct {
	// Enabled attaches the inspector and serves it at Addr. serve refuses
	// to run without it.
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled,omitempty"`
	Namespace string `yaml:"namespace" json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled,omitempty"`
	TracerName string `yaml:"tracerName" json:"tracerName,omitempty"`
}

// SchedulerConfig contains flush settings.
type SchedulerConfig struct {
	MaxPasses int `yaml:"maxPasses" json:"maxPasses,omitempty"`
}

// DemoConfig contains settings of the demo command.
type DemoConfig struct {
	// Interval is a Go duration string such as "500ms".
	Interval string `yaml:"interval" json:"interval,omitempty"`
	Appends  int    `yaml:"appends" json:"appends,omitempty"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Devtools: DevtoolsConfig{Enabled: true},
		Metrics:  MetricsConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads storebind.yaml, or storebind.json, from dir.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, JSONConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("B041").
		WithDetail("No " + ConfigFileName + " or " + JSONConfigFileName + " found in " + dir).
		Wrap(ErrNotFound)
}

// LoadFile reads one configuration file. The format follows the extension;
// anything but .json is parsed as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("B041").
				WithDetail("No configuration file at " + path).
				Wrap(ErrNotFound)
		}
		return nil, errors.New("B040").Wrap(err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("B040").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Scheduler.MaxPasses == 0 {
		c.Scheduler.MaxPasses = DefaultMaxPasses
	}
	if c.Demo.Interval == "" {
		c.Demo.Interval = DefaultInterval.String()
	}
	if c.Demo.Appends == 0 {
		c.Demo.Appends = DefaultAppends
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return errors.New("B040").WithDetail(err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("B040").
			WithDetail(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Scheduler.MaxPasses < 0 {
		return errors.New("B040").
			WithDetail("scheduler.maxPasses must not be negative")
	}
	if c.Demo.Appends < 0 {
		return errors.New("B040").
			WithDetail("demo.appends must not be negative")
	}
	if _, err := c.Interval(); err != nil {
		return errors.New("B040").
			WithDetail(fmt.Sprintf("demo.interval: %v", err))
	}
	return nil
}

// Level parses Log.Level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Interval parses Demo.Interval.
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Demo.Interval)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", d)
	}
	return d, nil
}

// Logger builds the logger described by Log.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
