// Package report assembles per-resource results into the final waste report.
package report

import (
	"sort"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// Build produces the WasteReport for one scan run. Entries are sorted by
// resource ID so the report does not depend on input ordering and identical
// inputs serialize byte-identically.
//
// Each resource lands in exactly one summary bucket: Unknown when either
// estimate is absent, WithWarnings when evaluated but carrying warnings,
// Clean otherwise.
func Build(scanWindow types.Window, entries []types.ResourceReport) *types.WasteReport {
	sorted := make([]types.ResourceReport, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, k int) bool {
		return sorted[i].Resource.ID < sorted[k].Resource.ID
	})

	summary := types.ReportSummary{
		Resources:     len(sorted),
		VerdictCounts: make(map[types.Verdict]int),
	}

	for _, e := range sorted {
		summary.VerdictCounts[e.Verdict.Verdict]++

		if e.Cost.Known() {
			summary.TotalAvoidableCostUSD += *e.Cost.Amount
		}
		if e.Carbon.Known() {
			summary.TotalAvoidableCO2Kg += *e.Carbon.Amount
		}

		switch {
		case !e.Cost.Known() || !e.Carbon.Known():
			summary.Unknown++
		case len(e.Warnings) > 0:
			summary.WithWarnings++
		default:
			summary.Clean++
		}
	}

	return &types.WasteReport{
		ScanWindow: scanWindow,
		Resources:  sorted,
		Summary:    summary,
	}
}
