package report

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

var scanWindow = types.Window{
	Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
}

func entry(id string, verdict types.Verdict, cost, carbon types.WasteEstimate, warnings ...string) types.ResourceReport {
	return types.ResourceReport{
		Resource: types.ResourceDescriptor{ID: id, Kind: types.KindComputeInstance, Class: "small", Region: "eu-west-1"},
		Verdict:  types.UtilizationVerdict{Verdict: verdict, Window: scanWindow},
		Cost:     cost,
		Carbon:   carbon,
		Warnings: warnings,
	}
}

func testEntries() []types.ResourceReport {
	return []types.ResourceReport{
		entry("i-idle", types.VerdictIdle,
			types.NewEstimate(16.8, types.UnitUSD, scanWindow),
			types.NewEstimate(1.27, types.UnitKgCO2e, scanWindow)),
		entry("i-active", types.VerdictActive,
			types.NewEstimate(0, types.UnitUSD, scanWindow),
			types.NewEstimate(0, types.UnitKgCO2e, scanWindow)),
		entry("i-unknown", types.VerdictIdle,
			types.UnknownEstimate(types.UnitUSD, scanWindow, "no pricing for compute_instance huge in eu-west-1"),
			types.NewEstimate(2.0, types.UnitKgCO2e, scanWindow),
			"no pricing for compute_instance huge in eu-west-1"),
		entry("i-sparse", types.VerdictInsufficientData,
			types.UnknownEstimate(types.UnitUSD, scanWindow, "utilization could not be evaluated"),
			types.UnknownEstimate(types.UnitKgCO2e, scanWindow, "utilization could not be evaluated")),
	}
}

func TestBuild_TotalsAndCounts(t *testing.T) {
	r := Build(scanWindow, testEntries())

	assert.Equal(t, 4, r.Summary.Resources)
	assert.InDelta(t, 16.8, r.Summary.TotalAvoidableCostUSD, 1e-9)
	assert.InDelta(t, 3.27, r.Summary.TotalAvoidableCO2Kg, 1e-9)

	assert.Equal(t, 2, r.Summary.VerdictCounts[types.VerdictIdle])
	assert.Equal(t, 1, r.Summary.VerdictCounts[types.VerdictActive])
	assert.Equal(t, 1, r.Summary.VerdictCounts[types.VerdictInsufficientData])

	// Resources with unknown estimates are counted apart from clean ones.
	assert.Equal(t, 2, r.Summary.Clean)
	assert.Equal(t, 2, r.Summary.Unknown)
	assert.Equal(t, 0, r.Summary.WithWarnings)
}

func TestBuild_PreservesWarnings(t *testing.T) {
	r := Build(scanWindow, testEntries())

	var found bool
	for _, e := range r.Resources {
		if e.Resource.ID == "i-unknown" {
			found = true
			require.NotEmpty(t, e.Warnings)
			assert.Contains(t, e.Warnings[0], "no pricing")
		}
	}
	assert.True(t, found, "resource with pricing gap must stay in the report")
}

func TestBuild_OrderIndependent(t *testing.T) {
	entries := testEntries()
	base := Build(scanWindow, entries)
	baseJSON, err := json.Marshal(base)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for range 5 {
		shuffled := make([]types.ResourceReport, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(i, k int) { shuffled[i], shuffled[k] = shuffled[k], shuffled[i] })

		permuted := Build(scanWindow, shuffled)
		permutedJSON, err := json.Marshal(permuted)
		require.NoError(t, err)
		assert.Equal(t, baseJSON, permutedJSON, "report must not depend on input ordering")
	}
}

func TestBuild_SortsByResourceID(t *testing.T) {
	r := Build(scanWindow, testEntries())
	for i := 1; i < len(r.Resources); i++ {
		assert.Less(t, r.Resources[i-1].Resource.ID, r.Resources[i].Resource.ID)
	}
}

func TestBuild_Empty(t *testing.T) {
	r := Build(scanWindow, nil)
	assert.Equal(t, 0, r.Summary.Resources)
	assert.Zero(t, r.Summary.TotalAvoidableCostUSD)
	assert.Empty(t, r.Resources)
}
