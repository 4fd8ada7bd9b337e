// Package estimator converts verdicts into avoidable cost and carbon
// estimates using the injected pricing and emissions tables.
package estimator

import "github.com/purvarane2002/cloud-cost-guardian/types"

// AvoidableFraction maps a verdict to the fraction of the resource's
// allocation counted as avoidable. Shared by the cost and carbon estimators
// so the mapping cannot drift between them.
//
// known is false for INSUFFICIENT_DATA: no fraction applies and the
// estimate must be absent rather than zero.
func AvoidableFraction(verdict types.Verdict, underutilizedFraction float64) (fraction float64, known bool) {
	switch verdict {
	case types.VerdictIdle:
		return 1.0, true
	case types.VerdictUnderutilized:
		// Heuristic gap to a right-sized allocation, not a precise
		// right-sizing computation.
		return underutilizedFraction, true
	case types.VerdictActive:
		return 0.0, true
	default:
		return 0.0, false
	}
}

// billableUnits returns how many pricing/power units a resource occupies:
// one per compute instance, one per GB for block volumes.
func billableUnits(d types.ResourceDescriptor) float64 {
	if d.Kind == types.KindBlockVolume {
		return float64(d.SizeGB)
	}
	return 1.0
}
