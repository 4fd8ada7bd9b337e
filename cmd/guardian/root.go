package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/purvarane2002/cloud-cost-guardian/config"
)

var (
	version    = "0.1.0"
	configPath string

	rootCmd = &cobra.Command{
		Use:   "guardian",
		Short: "Resource Waste Estimation Engine",
		Long: `Guardian - Resource Waste Estimation Engine

Guardian scans cloud utilization telemetry, classifies resources as
active, idle or underutilized, and estimates the cost and carbon you
could avoid by acting on the waste it finds.

Estimates are conservative: a resource is only counted as waste when
the evidence window supports it, and anything unmeasurable is reported
as unknown rather than zero.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Guardian {{.Version}} - Resource Waste Estimation Engine
`)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
}

// loadConfig resolves the effective configuration and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	return cfg, nil
}
