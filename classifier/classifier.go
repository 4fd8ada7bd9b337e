// Package classifier applies threshold-and-duration rules to normalized
// utilization series to produce one verdict per resource.
package classifier

import (
	"fmt"
	"time"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// Config holds the classification thresholds and evidence window length.
type Config struct {
	IdleCPUPct          float64
	UnderutilizedCPUPct float64
	IdleThroughputBps   float64
	Window              time.Duration
}

// Input carries everything the classifier needs for one resource. The
// engine populates it after normalization; Insufficient is set when any
// required signal failed to normalize, with Partial holding whatever span
// of evidence was available.
type Input struct {
	Descriptor   types.ResourceDescriptor
	CPU          *types.UtilizationSeries
	Network      *types.UtilizationSeries
	Insufficient bool
	Partial      types.Window
	ScanWindow   types.Window
}

// Classifier turns series into verdicts. Classification is deterministic:
// the evidence window is anchored at the series' own last timestamp, never
// the wall clock.
type Classifier struct {
	cfg Config
}

// New creates a classifier.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify produces exactly one verdict for the resource.
func (c *Classifier) Classify(in Input) types.UtilizationVerdict {
	if in.Descriptor.Kind == types.KindBlockVolume {
		return c.classifyVolume(in)
	}
	return c.classifyCompute(in)
}

// classifyVolume decides from attachment state. Block volumes carry no CPU
// signal; an unattached volume is pure waste, an attached one is in service.
func (c *Classifier) classifyVolume(in Input) types.UtilizationVerdict {
	if !in.Descriptor.Attached {
		return types.UtilizationVerdict{
			Verdict: types.VerdictIdle,
			Window:  in.ScanWindow,
			Basis:   "volume not attached to any instance",
		}
	}
	return types.UtilizationVerdict{
		Verdict: types.VerdictActive,
		Window:  in.ScanWindow,
		Basis:   "volume attached and in service",
	}
}

func (c *Classifier) classifyCompute(in Input) types.UtilizationVerdict {
	if in.Insufficient || in.CPU == nil || in.Network == nil {
		return insufficientVerdict(in.Partial)
	}

	end := in.CPU.End()
	window := types.Window{Start: end.Add(-c.cfg.Window), End: end}

	meanCPU, cpuOK := in.CPU.MeanOver(window)
	peakCPU, _ := in.CPU.PeakOver(window)
	meanNet, netOK := in.Network.MeanOver(window)
	if !cpuOK || !netOK {
		return insufficientVerdict(types.Window{Start: in.CPU.Start(), End: end})
	}

	v := types.UtilizationVerdict{
		Window:         window,
		MeanCPUPct:     &meanCPU,
		PeakCPUPct:     &peakCPU,
		MeanNetworkBps: &meanNet,
	}

	// Strict inequality: a resource exactly at a threshold lands in the
	// lower-waste category.
	switch {
	case meanCPU < c.cfg.IdleCPUPct && meanNet < c.cfg.IdleThroughputBps:
		v.Verdict = types.VerdictIdle
		v.Basis = fmt.Sprintf("mean cpu %.2f%% and mean network %.0f B/s below idle thresholds", meanCPU, meanNet)
	case meanCPU < c.cfg.UnderutilizedCPUPct:
		v.Verdict = types.VerdictUnderutilized
		v.Basis = fmt.Sprintf("mean cpu %.2f%% below right-sizing threshold", meanCPU)
	default:
		v.Verdict = types.VerdictActive
		v.Basis = fmt.Sprintf("mean cpu %.2f%% within normal range", meanCPU)
	}
	return v
}

func insufficientVerdict(partial types.Window) types.UtilizationVerdict {
	return types.UtilizationVerdict{
		Verdict: types.VerdictInsufficientData,
		Window:  partial,
		Basis:   "not enough usable samples in evidence window",
	}
}
