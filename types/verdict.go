package types

// Verdict classifies a resource's utilization over the evidence window.
type Verdict string

const (
	VerdictActive           Verdict = "ACTIVE"
	VerdictIdle             Verdict = "IDLE"
	VerdictUnderutilized    Verdict = "UNDERUTILIZED"
	VerdictInsufficientData Verdict = "INSUFFICIENT_DATA"
)

// UtilizationVerdict is the classification result for one resource.
// It is created once by the classifier and never mutated.
type UtilizationVerdict struct {
	Verdict Verdict `json:"verdict"`
	Window  Window  `json:"evidence_window"`

	// Statistics that drove the decision. Absent for volumes and for
	// INSUFFICIENT_DATA verdicts.
	MeanCPUPct     *float64 `json:"mean_cpu_pct,omitempty"`
	PeakCPUPct     *float64 `json:"peak_cpu_pct,omitempty"`
	MeanNetworkBps *float64 `json:"mean_network_bps,omitempty"`

	// Basis states the triggering statistic or rule in plain words.
	Basis string `json:"basis"`
}

// AttributionHours is the length of the evidence window in hours, which is
// the period waste estimates are attributed over.
func (v UtilizationVerdict) AttributionHours() float64 {
	return v.Window.Hours()
}
