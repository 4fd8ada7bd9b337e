package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
engine:
  idle_cpu_pct: 3.5
  idle_window_days: 7
aws:
  region: eu-west-1
output:
  store_path: /var/lib/guardian/reports.db
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.IdleCPUPct != 3.5 {
		t.Errorf("IdleCPUPct = %v, want 3.5", cfg.Engine.IdleCPUPct)
	}
	if cfg.Engine.IdleWindowDays != 7 {
		t.Errorf("IdleWindowDays = %v, want 7", cfg.Engine.IdleWindowDays)
	}
	// Unset knobs pick up defaults.
	if cfg.Engine.UnderutilizedCPUPct != 20.0 {
		t.Errorf("UnderutilizedCPUPct = %v, want default 20.0", cfg.Engine.UnderutilizedCPUPct)
	}
	if cfg.Engine.UnderutilizedAvoidableFraction != 0.5 {
		t.Errorf("UnderutilizedAvoidableFraction = %v, want default 0.5", cfg.Engine.UnderutilizedAvoidableFraction)
	}
	if cfg.AWS.Region != "eu-west-1" {
		t.Errorf("Region = %v, want eu-west-1", cfg.AWS.Region)
	}
	if cfg.Output.S3Prefix != "reports/" {
		t.Errorf("S3Prefix = %v, want reports/", cfg.Output.S3Prefix)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %v, want debug", cfg.Log.Level)
	}
}

func TestEngineConfig_Derived(t *testing.T) {
	cfg := DefaultEngine()

	if got := cfg.Window(); got != 14*24*time.Hour {
		t.Errorf("Window() = %v, want 336h", got)
	}
	if got := cfg.TargetInterval(); got != time.Hour {
		t.Errorf("TargetInterval() = %v, want 1h", got)
	}
	// One full evidence window of hourly data.
	if got := cfg.MinSamples(); got != 336 {
		t.Errorf("MinSamples() = %v, want 336", got)
	}

	cfg.MinimumSampleCount = 12
	if got := cfg.MinSamples(); got != 12 {
		t.Errorf("MinSamples() with override = %v, want 12", got)
	}
}

func TestEngineConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EngineConfig)
		wantErr bool
	}{
		{"defaults valid", func(c *EngineConfig) {}, false},
		{"negative idle threshold", func(c *EngineConfig) { c.IdleCPUPct = -1 }, true},
		{"underutilized below idle", func(c *EngineConfig) { c.UnderutilizedCPUPct = 2 }, true},
		{"non-positive window", func(c *EngineConfig) { c.IdleWindowDays = 0 }, true},
		{"negative throughput", func(c *EngineConfig) { c.IdleThroughputBytesPerSec = -5 }, true},
		{"fraction above one", func(c *EngineConfig) { c.UnderutilizedAvoidableFraction = 1.5 }, true},
		{"non-positive interval", func(c *EngineConfig) { c.NormalizerTargetIntervalSeconds = -60 }, true},
		{"negative min samples", func(c *EngineConfig) { c.MinimumSampleCount = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngine()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
