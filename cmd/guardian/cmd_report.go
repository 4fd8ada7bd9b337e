package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/purvarane2002/cloud-cost-guardian/storage"
	"github.com/purvarane2002/cloud-cost-guardian/types"
)

var (
	reportStorePath string
	reportSinceDays int
	reportSummary   bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show stored waste reports",
	Long: `Read waste reports back from the local report store without
rescanning. By default prints the latest report as JSON.`,
	Example: `  guardian report                 # Latest report
  guardian report --summary       # Latest report, summary only
  guardian report --since 7       # Summaries for the last 7 days`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportStorePath, "store", "./guardian-data", "Report store directory")
	reportCmd.Flags().IntVar(&reportSinceDays, "since", 0, "Show reports from the last N days")
	reportCmd.Flags().BoolVar(&reportSummary, "summary", false, "Print summaries instead of full reports")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	storePath := reportStorePath
	if cfg.Output.StorePath != "" && !cmd.Flags().Changed("store") {
		storePath = cfg.Output.StorePath
	}

	store, err := storage.OpenReportStore(storePath)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if reportSinceDays > 0 {
		reports, err := store.Since(time.Now().AddDate(0, 0, -reportSinceDays))
		if err != nil {
			return err
		}
		return printReports(reports, true)
	}

	latest, err := store.Latest()
	if err != nil {
		return err
	}
	return printReports([]*types.WasteReport{latest}, reportSummary)
}

func printReports(reports []*types.WasteReport, summaryOnly bool) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for _, report := range reports {
		if summaryOnly {
			if err := enc.Encode(struct {
				ScanWindow types.Window        `json:"scan_window"`
				Summary    types.ReportSummary `json:"summary"`
			}{report.ScanWindow, report.Summary}); err != nil {
				return err
			}
			continue
		}
		if err := enc.Encode(report); err != nil {
			return err
		}
	}
	return nil
}
