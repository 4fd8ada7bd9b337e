// Package config handles YAML configuration for Guardian.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	AWS    AWSConfig    `yaml:"aws"`
	Tables TablesConfig `yaml:"tables"`
	Policy PolicyConfig `yaml:"policy"`
	Output OutputConfig `yaml:"output"`
	OTEL   OTELConfig   `yaml:"otel"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig holds the estimation engine policy knobs. Every field has a
// default and may be overridden per scan.
type EngineConfig struct {
	IdleCPUPct                      float64 `yaml:"idle_cpu_pct"`
	UnderutilizedCPUPct             float64 `yaml:"underutilized_cpu_pct"`
	IdleWindowDays                  int     `yaml:"idle_window_days"`
	IdleThroughputBytesPerSec       float64 `yaml:"idle_throughput_bytes_per_sec"`
	UnderutilizedAvoidableFraction  float64 `yaml:"underutilized_avoidable_fraction"`
	NormalizerTargetIntervalSeconds int     `yaml:"normalizer_target_interval_seconds"`
	MinimumSampleCount              int     `yaml:"minimum_sample_count"`
}

// AWSConfig holds collector settings.
type AWSConfig struct {
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`
}

// TablesConfig points at the pricing/emissions reference data file.
// An empty path means the built-in tables.
type TablesConfig struct {
	Path string `yaml:"path"`
}

// PolicyConfig points at the rego exemption policy file. An empty path
// means the built-in policy.
type PolicyConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig holds report sink settings. Empty values disable a sink.
type OutputConfig struct {
	JSONPath  string `yaml:"json_path"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Prefix  string `yaml:"s3_prefix"`
	StorePath string `yaml:"store_path"`
}

// OTELConfig holds OpenTelemetry settings.
type OTELConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultEngine returns the engine knobs with documented defaults applied.
func DefaultEngine() EngineConfig {
	return EngineConfig{
		IdleCPUPct:                      5.0,
		UnderutilizedCPUPct:             20.0,
		IdleWindowDays:                  14,
		IdleThroughputBytesPerSec:       1024.0,
		UnderutilizedAvoidableFraction:  0.5,
		NormalizerTargetIntervalSeconds: 3600,
	}
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	def := DefaultEngine()
	if cfg.Engine.IdleCPUPct == 0 {
		cfg.Engine.IdleCPUPct = def.IdleCPUPct
	}
	if cfg.Engine.UnderutilizedCPUPct == 0 {
		cfg.Engine.UnderutilizedCPUPct = def.UnderutilizedCPUPct
	}
	if cfg.Engine.IdleWindowDays == 0 {
		cfg.Engine.IdleWindowDays = def.IdleWindowDays
	}
	if cfg.Engine.IdleThroughputBytesPerSec == 0 {
		cfg.Engine.IdleThroughputBytesPerSec = def.IdleThroughputBytesPerSec
	}
	if cfg.Engine.UnderutilizedAvoidableFraction == 0 {
		cfg.Engine.UnderutilizedAvoidableFraction = def.UnderutilizedAvoidableFraction
	}
	if cfg.Engine.NormalizerTargetIntervalSeconds == 0 {
		cfg.Engine.NormalizerTargetIntervalSeconds = def.NormalizerTargetIntervalSeconds
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "eu-west-2"
	}
	if cfg.Output.S3Prefix == "" {
		cfg.Output.S3Prefix = "reports/"
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = "guardian"
	}
	if cfg.OTEL.SampleRate == 0 {
		cfg.OTEL.SampleRate = 1.0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Window returns the evidence window length.
func (c EngineConfig) Window() time.Duration {
	return time.Duration(c.IdleWindowDays) * 24 * time.Hour
}

// TargetInterval returns the normalizer target interval.
func (c EngineConfig) TargetInterval() time.Duration {
	return time.Duration(c.NormalizerTargetIntervalSeconds) * time.Second
}

// MinSamples returns the minimum raw sample count. When unset it is derived
// by requiring one full evidence window of data at the target interval.
func (c EngineConfig) MinSamples() int {
	if c.MinimumSampleCount > 0 {
		return c.MinimumSampleCount
	}
	if c.NormalizerTargetIntervalSeconds <= 0 {
		return 1
	}
	return int(c.Window() / c.TargetInterval())
}

// Validate checks engine knobs. Invalid values invalidate the whole run,
// so they are fatal at scan start.
func (c EngineConfig) Validate() error {
	if c.IdleCPUPct < 0 {
		return fmt.Errorf("engine: idle_cpu_pct must not be negative (got %v)", c.IdleCPUPct)
	}
	if c.UnderutilizedCPUPct < c.IdleCPUPct {
		return fmt.Errorf("engine: underutilized_cpu_pct must be >= idle_cpu_pct (got %v < %v)",
			c.UnderutilizedCPUPct, c.IdleCPUPct)
	}
	if c.IdleWindowDays <= 0 {
		return fmt.Errorf("engine: idle_window_days must be positive (got %d)", c.IdleWindowDays)
	}
	if c.IdleThroughputBytesPerSec < 0 {
		return fmt.Errorf("engine: idle_throughput_bytes_per_sec must not be negative (got %v)", c.IdleThroughputBytesPerSec)
	}
	if c.UnderutilizedAvoidableFraction < 0 || c.UnderutilizedAvoidableFraction > 1 {
		return fmt.Errorf("engine: underutilized_avoidable_fraction must be in [0,1] (got %v)", c.UnderutilizedAvoidableFraction)
	}
	if c.NormalizerTargetIntervalSeconds <= 0 {
		return fmt.Errorf("engine: normalizer_target_interval_seconds must be positive (got %d)", c.NormalizerTargetIntervalSeconds)
	}
	if c.MinimumSampleCount < 0 {
		return fmt.Errorf("engine: minimum_sample_count must not be negative (got %d)", c.MinimumSampleCount)
	}
	return nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if c.AWS.Region == "" {
		return fmt.Errorf("aws: region is required")
	}
	if c.OTEL.SampleRate < 0 || c.OTEL.SampleRate > 1 {
		return fmt.Errorf("otel: sample_rate must be between 0.0 and 1.0 (got %v)", c.OTEL.SampleRate)
	}
	return nil
}
