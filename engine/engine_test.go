package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purvarane2002/cloud-cost-guardian/config"
	"github.com/purvarane2002/cloud-cost-guardian/policy"
	"github.com/purvarane2002/cloud-cost-guardian/pricing"
	"github.com/purvarane2002/cloud-cost-guardian/types"
)

var scanWindow = types.Window{
	Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
}

// hourlySamples covers the whole window at a constant value, one sample
// per hour, boundaries included.
func hourlySamples(w types.Window, value float64) []types.MetricSample {
	var samples []types.MetricSample
	for ts := w.Start; !ts.After(w.End); ts = ts.Add(time.Hour) {
		samples = append(samples, types.MetricSample{Timestamp: ts, Value: value})
	}
	return samples
}

func computeInput(id, class, region string, cpu, network float64, tags map[string]string) ResourceInput {
	return ResourceInput{
		Descriptor: types.ResourceDescriptor{
			ID:     id,
			Kind:   types.KindComputeInstance,
			Class:  class,
			Region: region,
			Tags:   tags,
		},
		Metrics: map[types.MetricName][]types.MetricSample{
			types.MetricCPUPct:     hourlySamples(scanWindow, cpu),
			types.MetricNetworkBps: hourlySamples(scanWindow, network),
		},
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := New(config.DefaultEngine(), pricing.Builtin(), opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_IdleInstance(t *testing.T) {
	eng := newTestEngine(t)

	rpt, err := eng.Run(context.Background(), ScanInput{
		Window:    scanWindow,
		Resources: []ResourceInput{computeInput("i-idle", "t3.micro", "eu-west-1", 2.0, 100.0, nil)},
	})
	require.NoError(t, err)
	require.Len(t, rpt.Resources, 1)

	entry := rpt.Resources[0]
	assert.Equal(t, types.VerdictIdle, entry.Verdict.Verdict)
	assert.InDelta(t, 336.0, entry.Verdict.AttributionHours(), 1e-9)

	// Full hourly rate over the evidence window: 0.0114 USD/h for 336h.
	require.True(t, entry.Cost.Known())
	assert.InDelta(t, 0.0114*336, *entry.Cost.Amount, 1e-9)

	// 8 W for 336h is 2.688 kWh, at 0.316 kg/kWh grid intensity.
	require.True(t, entry.Carbon.Known())
	assert.InDelta(t, 8.0*336/1000*0.316, *entry.Carbon.Amount, 1e-9)

	assert.Empty(t, entry.Warnings)
	assert.Equal(t, 1, rpt.Summary.Clean)
}

func TestEngine_ActiveInstanceConfirmedZero(t *testing.T) {
	eng := newTestEngine(t)

	rpt, err := eng.Run(context.Background(), ScanInput{
		Window:    scanWindow,
		Resources: []ResourceInput{computeInput("i-busy", "t3.micro", "eu-west-1", 55.0, 50_000.0, nil)},
	})
	require.NoError(t, err)

	entry := rpt.Resources[0]
	assert.Equal(t, types.VerdictActive, entry.Verdict.Verdict)
	require.True(t, entry.Cost.Known())
	require.True(t, entry.Carbon.Known())
	assert.Zero(t, *entry.Cost.Amount)
	assert.Zero(t, *entry.Carbon.Amount)
	assert.Equal(t, 1, rpt.Summary.Clean)
	assert.Zero(t, rpt.Summary.TotalAvoidableCostUSD)
}

func TestEngine_SparseMetricsDowngrade(t *testing.T) {
	eng := newTestEngine(t)

	sparse := ResourceInput{
		Descriptor: types.ResourceDescriptor{ID: "i-sparse", Kind: types.KindComputeInstance, Class: "t3.micro", Region: "eu-west-1"},
		Metrics: map[types.MetricName][]types.MetricSample{
			types.MetricCPUPct: {
				{Timestamp: scanWindow.Start.Add(time.Hour), Value: 1.0},
				{Timestamp: scanWindow.Start.Add(2 * time.Hour), Value: 1.5},
			},
			types.MetricNetworkBps: {
				{Timestamp: scanWindow.Start.Add(time.Hour), Value: 10.0},
			},
		},
	}

	rpt, err := eng.Run(context.Background(), ScanInput{Window: scanWindow, Resources: []ResourceInput{sparse}})
	require.NoError(t, err, "insufficient samples must not fail the scan")

	entry := rpt.Resources[0]
	assert.Equal(t, types.VerdictInsufficientData, entry.Verdict.Verdict)
	assert.False(t, entry.Cost.Known(), "sparse data must never collapse to a zero estimate")
	assert.False(t, entry.Carbon.Known())
	assert.Equal(t, scanWindow.Start.Add(time.Hour), entry.Verdict.Window.Start)
	assert.Equal(t, scanWindow.Start.Add(2*time.Hour), entry.Verdict.Window.End)
	assert.Equal(t, 1, rpt.Summary.Unknown)
}

func TestEngine_MissingPricingDegradesToWarning(t *testing.T) {
	// Tables with power and intensity for the class but no price entry, so
	// carbon resolves while cost degrades.
	tables := pricing.NewTables(nil,
		map[string]float64{"eu-west-1": 0.316},
		[]pricing.PowerEntry{{Kind: types.KindComputeInstance, Class: "m5.large", Watts: 35.0}},
	)
	eng, err := New(config.DefaultEngine(), tables)
	require.NoError(t, err)

	rpt, err := eng.Run(context.Background(), ScanInput{
		Window:    scanWindow,
		Resources: []ResourceInput{computeInput("i-unpriced", "m5.large", "eu-west-1", 2.0, 100.0, nil)},
	})
	require.NoError(t, err)

	entry := rpt.Resources[0]
	assert.Equal(t, types.VerdictIdle, entry.Verdict.Verdict)
	assert.False(t, entry.Cost.Known())
	require.True(t, entry.Carbon.Known())
	assert.InDelta(t, 35.0*336/1000*0.316, *entry.Carbon.Amount, 1e-9)
	require.Len(t, entry.Warnings, 1)
	assert.Contains(t, entry.Warnings[0], "no pricing")
	assert.Equal(t, 1, rpt.Summary.Unknown, "a missing estimate keeps the resource out of the clean bucket")
	assert.InDelta(t, *entry.Carbon.Amount, rpt.Summary.TotalAvoidableCO2Kg, 1e-9)
}

func TestEngine_UnattachedVolume(t *testing.T) {
	eng := newTestEngine(t)

	volume := ResourceInput{
		Descriptor: types.ResourceDescriptor{
			ID:     "vol-orphan",
			Kind:   types.KindBlockVolume,
			Class:  "gp3",
			Region: "eu-west-1",
			SizeGB: 100,
		},
	}

	rpt, err := eng.Run(context.Background(), ScanInput{Window: scanWindow, Resources: []ResourceInput{volume}})
	require.NoError(t, err)

	entry := rpt.Resources[0]
	assert.Equal(t, types.VerdictIdle, entry.Verdict.Verdict)
	require.True(t, entry.Cost.Known())
	assert.InDelta(t, 0.10/730.0*100*336, *entry.Cost.Amount, 1e-9)
}

func TestEngine_ExemptResource(t *testing.T) {
	exemptions, err := policy.NewDefaultExemptionEngine(context.Background())
	require.NoError(t, err)
	eng := newTestEngine(t, WithExemptions(exemptions))

	rpt, err := eng.Run(context.Background(), ScanInput{
		Window: scanWindow,
		Resources: []ResourceInput{
			computeInput("i-protected", "t3.micro", "eu-west-1", 1.0, 50.0, map[string]string{"DoNotStop": "true"}),
		},
	})
	require.NoError(t, err)

	entry := rpt.Resources[0]
	assert.True(t, entry.Exempt)
	assert.Equal(t, types.VerdictActive, entry.Verdict.Verdict)
	require.True(t, entry.Cost.Known())
	assert.Zero(t, *entry.Cost.Amount)
	assert.Zero(t, rpt.Summary.TotalAvoidableCostUSD)
}

func TestEngine_NoMetricDataAborts(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Run(context.Background(), ScanInput{
		Window: scanWindow,
		Resources: []ResourceInput{{
			Descriptor: types.ResourceDescriptor{ID: "i-blind", Kind: types.KindComputeInstance, Class: "t3.micro", Region: "eu-west-1"},
		}},
	})
	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "i-blind", malformed.ResourceID)
}

func TestEngine_DeterministicAndOrderIndependent(t *testing.T) {
	eng := newTestEngine(t, WithWorkers(4))

	resources := []ResourceInput{
		computeInput("i-c", "t3.micro", "eu-west-1", 2.0, 100.0, nil),
		computeInput("i-a", "t2.micro", "eu-west-2", 12.0, 50_000.0, nil),
		computeInput("i-b", "t3.micro", "eu-west-2", 60.0, 80_000.0, nil),
	}
	reversed := []ResourceInput{resources[2], resources[1], resources[0]}

	first, err := eng.Run(context.Background(), ScanInput{Window: scanWindow, Resources: resources})
	require.NoError(t, err)
	again, err := eng.Run(context.Background(), ScanInput{Window: scanWindow, Resources: resources})
	require.NoError(t, err)
	shuffled, err := eng.Run(context.Background(), ScanInput{Window: scanWindow, Resources: reversed})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(again)
	require.NoError(t, err)
	c, err := json.Marshal(shuffled)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b), "same input must produce byte-identical reports")
	assert.Equal(t, string(a), string(c), "input order must not affect the report")
}

func TestEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultEngine()
	cfg.UnderutilizedCPUPct = 1.0 // below idle threshold
	_, err := New(cfg, pricing.Builtin())
	require.Error(t, err)
}
