package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/purvarane2002/cloud-cost-guardian/internal/daemon"
	"github.com/purvarane2002/cloud-cost-guardian/internal/emitter"
	"github.com/purvarane2002/cloud-cost-guardian/telemetry"
)

var (
	daemonInterval    time.Duration
	daemonMetricsAddr string
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run continuous waste scans",
	Long: `Run guardian as a long-lived process, scanning at a fixed interval.

Each cycle produces a full waste report, persists it to the report store,
and republishes the totals as Prometheus metrics.

Endpoints:
- /metrics for Prometheus scraping
- /health for status, /-/healthy and /-/ready for probes`,
	Example: `  guardian daemon                        # Defaults: hourly scans, :2112
  guardian daemon --interval 30m         # Scan every 30 minutes
  guardian daemon --metrics-addr :9090   # Custom metrics address`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().DurationVar(&daemonInterval, "interval", time.Hour, "Scan interval")
	daemonCmd.Flags().StringVar(&daemonMetricsAddr, "metrics-addr", ":2112", "Metrics HTTP server address")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Output.StorePath == "" {
		cfg.Output.StorePath = "./guardian-data"
	}

	// Prometheus scrapes pull from this process, so the global meter
	// provider reads through the prometheus exporter.
	promExporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExporter)))

	promEmitter, err := emitter.NewPrometheusEmitter()
	if err != nil {
		return fmt.Errorf("failed to create prometheus emitter: %w", err)
	}

	ctx := cmd.Context()
	p, err := newPipeline(ctx, cfg, promEmitter)
	if err != nil {
		return fmt.Errorf("failed to build scan pipeline: %w", err)
	}
	defer p.Close()

	d, err := daemon.New(daemon.Config{
		Interval:    daemonInterval,
		MetricsAddr: daemonMetricsAddr,
	}, p, telemetry.NewLogger(cfg.OTEL.ServiceName))
	if err != nil {
		return err
	}

	return d.Run(ctx)
}
