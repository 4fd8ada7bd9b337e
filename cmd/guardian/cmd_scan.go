package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	scanRegion string
	scanOutput string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and emit the waste report",
	Long: `Scan the configured region once: list compute instances and block
volumes, pull their utilization telemetry, classify each resource, and
estimate the avoidable cost and carbon.

The report goes to every configured sink. With no sinks configured the
report prints to stdout as JSON.`,
	Example: `  guardian scan                        # Scan with defaults, JSON to stdout
  guardian scan --region eu-west-1     # Scan a specific region
  guardian scan --output report.json   # Write the report to a file
  guardian scan --config guardian.yml  # Full configuration`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanRegion, "region", "r", "", "AWS region to scan (overrides config)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Report file path, or - for stdout (overrides config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scanRegion != "" {
		cfg.AWS.Region = scanRegion
	}
	if scanOutput != "" {
		cfg.Output.JSONPath = scanOutput
	}
	if cfg.Output.JSONPath == "" && cfg.Output.S3Bucket == "" {
		cfg.Output.JSONPath = "-"
	}

	ctx := cmd.Context()
	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build scan pipeline: %w", err)
	}
	defer p.Close()

	return p.Scan(ctx)
}
