package emitter

import (
	"sync"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// VerdictDiff records one resource whose verdict moved between two
// consecutive reports.
type VerdictDiff struct {
	ResourceID string
	Previous   types.Verdict
	Current    types.Verdict
}

// ChangeTracker remembers the previous report's verdicts and detects
// transitions, so an instance going idle surfaces as a change rather than
// a steady-state count.
type ChangeTracker struct {
	mu          sync.RWMutex
	previous    map[string]types.Verdict
	initialized bool
}

// NewChangeTracker creates a change tracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{previous: make(map[string]types.Verdict)}
}

// ComputeDiff compares the report against the previous baseline.
// Returns nil on the first report. Resources appearing or disappearing
// between scans are not transitions and are skipped.
func (c *ChangeTracker) ComputeDiff(report *types.WasteReport) []VerdictDiff {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return nil
	}

	var diffs []VerdictDiff
	for _, entry := range report.Resources {
		prev, seen := c.previous[entry.Resource.ID]
		if !seen || prev == entry.Verdict.Verdict {
			continue
		}
		diffs = append(diffs, VerdictDiff{
			ResourceID: entry.Resource.ID,
			Previous:   prev,
			Current:    entry.Verdict.Verdict,
		})
	}
	return diffs
}

// Update stores the report as the new baseline.
func (c *ChangeTracker) Update(report *types.WasteReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.previous = make(map[string]types.Verdict, len(report.Resources))
	for _, entry := range report.Resources {
		c.previous[entry.Resource.ID] = entry.Verdict.Verdict
	}
	c.initialized = true
}
