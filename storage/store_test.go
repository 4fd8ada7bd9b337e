package storage

import (
	"testing"
	"time"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

func reportEnding(end time.Time, cost float64) *types.WasteReport {
	return &types.WasteReport{
		ScanWindow: types.Window{Start: end.Add(-14 * 24 * time.Hour), End: end},
		Summary: types.ReportSummary{
			Resources:             1,
			VerdictCounts:         map[types.Verdict]int{types.VerdictIdle: 1},
			TotalAvoidableCostUSD: cost,
		},
	}
}

func TestReportStore_SaveAndLatest(t *testing.T) {
	store, err := OpenReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if err := store.Save(reportEnding(end, 3.83)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if !latest.ScanWindow.End.Equal(end) {
		t.Errorf("Latest scan end = %v, want %v", latest.ScanWindow.End, end)
	}
	if latest.Summary.TotalAvoidableCostUSD != 3.83 {
		t.Errorf("TotalAvoidableCostUSD = %v, want 3.83", latest.Summary.TotalAvoidableCostUSD)
	}
}

func TestReportStore_SameWindowOverwrites(t *testing.T) {
	store, err := OpenReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if err := store.Save(reportEnding(end, 1.0)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(reportEnding(end, 2.0)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
	got, err := store.Get(end)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Summary.TotalAvoidableCostUSD != 2.0 {
		t.Errorf("Retried scan should overwrite: cost = %v, want 2.0", got.Summary.TotalAvoidableCostUSD)
	}
}

func TestReportStore_Since(t *testing.T) {
	store, err := OpenReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 5; day++ {
		if err := store.Save(reportEnding(base.AddDate(0, 0, day), float64(day))); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	reports, err := store.Since(base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("Since failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("Since returned %d reports, want 2", len(reports))
	}
	if !reports[0].ScanWindow.End.Before(reports[1].ScanWindow.End) {
		t.Error("Reports should come back oldest first")
	}
}

func TestReportStore_IndexSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenReportStore(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if err := store.Save(reportEnding(end, 3.83)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenReportStore(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if reopened.Count() != 1 {
		t.Errorf("Count after reopen = %d, want 1", reopened.Count())
	}
	latest, err := reopened.Latest()
	if err != nil {
		t.Fatalf("Latest after reopen failed: %v", err)
	}
	if !latest.ScanWindow.End.Equal(end) {
		t.Errorf("Latest scan end = %v, want %v", latest.ScanWindow.End, end)
	}
}

func TestReportStore_Prune(t *testing.T) {
	store, err := OpenReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 4; day++ {
		if err := store.Save(reportEnding(base.AddDate(0, 0, day), float64(day))); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	deleted, err := store.Prune(base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune deleted %d, want 2", deleted)
	}
	if store.Count() != 2 {
		t.Errorf("Count after prune = %d, want 2", store.Count())
	}

	// Latest is protected even below the cutoff.
	deleted, err = store.Prune(base.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune deleted %d, want 1", deleted)
	}
	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest after prune failed: %v", err)
	}
	if !latest.ScanWindow.End.Equal(base.AddDate(0, 0, 3)) {
		t.Errorf("Latest was pruned: end = %v", latest.ScanWindow.End)
	}
}
