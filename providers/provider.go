// Package providers defines the collector interfaces the engine's callers
// implement per cloud. The engine itself never talks to a cloud API; a
// provider gathers inventory and raw metrics up front and hands the engine
// a self-contained input set.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/purvarane2002/cloud-cost-guardian/engine"
	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// InventorySource lists the resources a scan should evaluate.
type InventorySource interface {
	ListComputeInstances(ctx context.Context) ([]types.ResourceDescriptor, error)
	ListBlockVolumes(ctx context.Context) ([]types.ResourceDescriptor, error)
}

// MetricsSource fetches raw utilization samples for one resource over a
// window. Samples may be irregular and unordered; the engine normalizes.
type MetricsSource interface {
	FetchMetrics(ctx context.Context, d types.ResourceDescriptor, window types.Window) (map[types.MetricName][]types.MetricSample, error)
}

// Provider is a full collector for one cloud.
type Provider interface {
	InventorySource
	MetricsSource
	Name() string
	Region() string
}

// Collect assembles a complete scan input: all compute instances and block
// volumes, with metrics fetched for the compute side. A metrics fetch
// failure aborts collection; a scan built on silently missing data would
// misreport resources as unmeasurable.
func Collect(ctx context.Context, p Provider, window types.Window) (engine.ScanInput, error) {
	input := engine.ScanInput{Window: window}

	instances, err := p.ListComputeInstances(ctx)
	if err != nil {
		return input, fmt.Errorf("failed to list compute instances: %w", err)
	}
	for _, d := range instances {
		metrics, err := p.FetchMetrics(ctx, d, window)
		if err != nil {
			return input, fmt.Errorf("failed to fetch metrics for %s: %w", d.ID, err)
		}
		input.Resources = append(input.Resources, engine.ResourceInput{Descriptor: d, Metrics: metrics})
	}

	volumes, err := p.ListBlockVolumes(ctx)
	if err != nil {
		return input, fmt.Errorf("failed to list block volumes: %w", err)
	}
	for _, d := range volumes {
		input.Resources = append(input.Resources, engine.ResourceInput{Descriptor: d})
	}

	return input, nil
}

// ScanWindowEndingNow returns the window [now-length, now], truncated to
// whole seconds so repeated collections in the same second line up.
func ScanWindowEndingNow(length time.Duration) types.Window {
	end := time.Now().UTC().Truncate(time.Second)
	return types.Window{Start: end.Add(-length), End: end}
}
