package config

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/store/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vango-store.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "VANGO_STORE_"

	// DefaultRenderBudget is the default number of flush passes.
	DefaultRenderBudget = 100

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "vango"

	// DefaultSubsystem is the default metrics subsystem.
	DefaultSubsystem = "store"

	// DefaultTracerName is the default OpenTelemetry instrumentation name.
	DefaultTracerName = "github.com/vango-dev/store"

	// DefaultConsumers is the default number of bench consumers.
	DefaultConsumers = 100

	// DefaultUpdates is the default number of bench updates.
	DefaultUpdates = 10000
)

// Config represents the complete vango-store.json configuration.
type Config struct {
	// Debug enables hook order validation.
	Debug bool `json:"debug,omitempty" env:"DEBUG"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" env:"LOG_LEVEL"`

	// Runtime contains component runtime configuration.
	Runtime RuntimeConfig `json:"runtime,omitempty" envPrefix:"RUNTIME_"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" envPrefix:"METRICS_"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" envPrefix:"TRACING_"`

	// Bench contains load-bench configuration.
	Bench BenchConfig `json:"bench,omitempty" envPrefix:"BENCH_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RuntimeConfig configures the component runtime.
type RuntimeConfig struct {
	// RenderBudget is the maximum number of flush passes.
	RenderBudget int `json:"renderBudget,omitempty" env:"RENDER_BUDGET"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" env:"NAMESPACE"`

	// Subsystem is the metrics subsystem.
	Subsystem string `json:"subsystem,omitempty" env:"SUBSYSTEM"`

	// ConstLabels are added to every store series, e.g. {"env": "prod"}.
	// From the environment: "env:prod,region:eu".
	ConstLabels map[string]string `json:"constLabels,omitempty" env:"CONST_LABELS"`

	// Buckets are the update duration histogram buckets in seconds.
	// Empty keeps the store defaults.
	Buckets []float64 `json:"buckets,omitempty" env:"BUCKETS"`

	// Addr is the listen address for /metrics. Empty disables the server.
	Addr string `json:"addr,omitempty" env:"ADDR"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// TracerName is the instrumentation name.
	TracerName string `json:"tracerName,omitempty" env:"TRACER_NAME"`
}

// BenchConfig configures the load bench.
type BenchConfig struct {
	// Consumers is the number of mounted components.
	Consumers int `json:"consumers,omitempty" env:"CONSUMERS"`

	// Updates is the number of setter calls.
	Updates int `json:"updates,omitempty" env:"UPDATES"`
}

// New returns a configuration with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads vango-store.json from dir, falling back to defaults when the
// file does not exist, then applies environment overrides and validates.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)

	cfg, err := LoadFile(path)
	if err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = New()
		cfg.configPath = path
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the configuration at path without environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E100").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// ApplyEnv overrides fields from VANGO_STORE_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New("E102").Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// Save writes the configuration back to the path it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E100").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E100").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the configuration was loaded from or saved to.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Runtime.RenderBudget == 0 {
		c.Runtime.RenderBudget = DefaultRenderBudget
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Subsystem == "" {
		c.Metrics.Subsystem = DefaultSubsystem
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Bench.Consumers == 0 {
		c.Bench.Consumers = DefaultConsumers
	}
	if c.Bench.Updates == 0 {
		c.Bench.Updates = DefaultUpdates
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, ok := parseLevel(c.LogLevel); !ok {
		return errors.New("E101").
			WithDetailf("logLevel %q must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.Runtime.RenderBudget < 1 {
		return errors.New("E101").WithDetail("runtime.renderBudget must be at least 1")
	}
	for i := 1; i < len(c.Metrics.Buckets); i++ {
		if c.Metrics.Buckets[i] <= c.Metrics.Buckets[i-1] {
			return errors.New("E101").
				WithDetailf("metrics.buckets must be strictly increasing (%v)", c.Metrics.Buckets)
		}
	}
	if c.Bench.Consumers < 1 {
		return errors.New("E101").WithDetail("bench.consumers must be at least 1")
	}
	if c.Bench.Updates < 0 {
		return errors.New("E101").WithDetail("bench.updates must not be negative")
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Exists returns true if vango-store.json exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
