package types

// ResourceReport is the per-resource aggregate handed to sinks.
type ResourceReport struct {
	Resource ResourceDescriptor `json:"resource"`
	Verdict  UtilizationVerdict `json:"verdict"`
	Cost     WasteEstimate      `json:"cost"`
	Carbon   WasteEstimate      `json:"carbon"`
	Exempt   bool               `json:"exempt,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

// ReportSummary aggregates one scan run. Clean, WithWarnings and Unknown
// partition the resource set so consumers can tell confirmed zero waste
// apart from "could not evaluate".
type ReportSummary struct {
	Resources             int             `json:"resources"`
	VerdictCounts         map[Verdict]int `json:"verdict_counts"`
	TotalAvoidableCostUSD float64         `json:"total_avoidable_cost_usd"`
	TotalAvoidableCO2Kg   float64         `json:"total_avoidable_co2_kg"`
	Clean                 int             `json:"clean"`
	WithWarnings          int             `json:"with_warnings"`
	Unknown               int             `json:"unknown"`
}

// WasteReport is the engine's output for one scan run: per-resource entries
// sorted by resource ID plus a run-level summary. It is immutable once built
// and carries no wall-clock timestamps, so identical inputs produce
// byte-identical reports.
type WasteReport struct {
	ScanWindow Window           `json:"scan_window"`
	Resources  []ResourceReport `json:"resources"`
	Summary    ReportSummary    `json:"summary"`
}
