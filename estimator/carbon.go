package estimator

import (
	"github.com/purvarane2002/cloud-cost-guardian/pricing"
	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// CarbonEstimator maps (descriptor, verdict) to avoidable CO2 mass.
// Mirrors the cost estimator's verdict handling through AvoidableFraction.
type CarbonEstimator struct {
	tables                *pricing.Tables
	underutilizedFraction float64
}

// NewCarbonEstimator creates a carbon estimator over the given tables.
func NewCarbonEstimator(tables *pricing.Tables, underutilizedFraction float64) *CarbonEstimator {
	return &CarbonEstimator{tables: tables, underutilizedFraction: underutilizedFraction}
}

// Estimate converts avoidable compute-time into avoidable CO2:
// power draw (watts) x avoidable hours x grid intensity (kg CO2e per kWh).
// Missing power-draw or intensity data is returned as an unknown estimate
// plus the lookup error, handled identically to pricing gaps.
func (e *CarbonEstimator) Estimate(d types.ResourceDescriptor, v types.UtilizationVerdict) (types.WasteEstimate, error) {
	fraction, known := AvoidableFraction(v.Verdict, e.underutilizedFraction)
	if !known {
		return types.UnknownEstimate(types.UnitKgCO2e, v.Window, "utilization could not be evaluated"), nil
	}

	watts, err := e.tables.PowerDrawWatts(d.Kind, d.Class)
	if err != nil {
		return types.UnknownEstimate(types.UnitKgCO2e, v.Window, err.Error()), err
	}
	intensity, err := e.tables.GridIntensity(d.Region)
	if err != nil {
		return types.UnknownEstimate(types.UnitKgCO2e, v.Window, err.Error()), err
	}

	kwh := watts * billableUnits(d) * v.AttributionHours() / 1000.0
	amount := kwh * intensity * fraction
	return types.NewEstimate(amount, types.UnitKgCO2e, v.Window), nil
}
