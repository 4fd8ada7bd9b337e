package estimator

import (
	"github.com/purvarane2002/cloud-cost-guardian/pricing"
	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// CostEstimator maps (descriptor, verdict) to avoidable monetary cost.
// Pure function of its inputs; safe for concurrent use.
type CostEstimator struct {
	tables                *pricing.Tables
	underutilizedFraction float64
}

// NewCostEstimator creates a cost estimator over the given tables.
func NewCostEstimator(tables *pricing.Tables, underutilizedFraction float64) *CostEstimator {
	return &CostEstimator{tables: tables, underutilizedFraction: underutilizedFraction}
}

// Estimate returns the avoidable cost over the verdict's evidence window.
// ACTIVE yields an explicit zero so report totals stay additive;
// INSUFFICIENT_DATA yields an absent amount, never zero. A missing pricing
// entry returns both an unknown estimate and the *pricing.UnknownPricingError
// for the caller to record as a per-resource warning.
func (e *CostEstimator) Estimate(d types.ResourceDescriptor, v types.UtilizationVerdict) (types.WasteEstimate, error) {
	fraction, known := AvoidableFraction(v.Verdict, e.underutilizedFraction)
	if !known {
		return types.UnknownEstimate(types.UnitUSD, v.Window, "utilization could not be evaluated"), nil
	}

	price, err := e.tables.HourlyPriceUSD(d.Kind, d.Class, d.Region)
	if err != nil {
		return types.UnknownEstimate(types.UnitUSD, v.Window, err.Error()), err
	}

	amount := price * billableUnits(d) * v.AttributionHours() * fraction
	return types.NewEstimate(amount, types.UnitUSD, v.Window), nil
}
