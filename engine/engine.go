// Package engine coordinates normalize -> classify -> estimate -> report
// for one scan run. The engine performs no I/O of its own: inventories and
// raw metrics are supplied by the caller, reference tables are injected
// read-only, and the finished report is returned to the caller.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/purvarane2002/cloud-cost-guardian/classifier"
	"github.com/purvarane2002/cloud-cost-guardian/config"
	"github.com/purvarane2002/cloud-cost-guardian/estimator"
	"github.com/purvarane2002/cloud-cost-guardian/normalizer"
	"github.com/purvarane2002/cloud-cost-guardian/policy"
	"github.com/purvarane2002/cloud-cost-guardian/pricing"
	"github.com/purvarane2002/cloud-cost-guardian/report"
	"github.com/purvarane2002/cloud-cost-guardian/telemetry"
	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// MalformedInputError reports an input set the engine cannot evaluate at
// all. Unlike per-resource estimate gaps, this aborts the whole scan.
type MalformedInputError struct {
	ResourceID string
	Reason     string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed scan input for %s: %s", e.ResourceID, e.Reason)
}

// ResourceInput pairs a descriptor with its raw metric series for one scan.
type ResourceInput struct {
	Descriptor types.ResourceDescriptor
	Metrics    map[types.MetricName][]types.MetricSample
}

// ScanInput is the full input set for one scan run, owned by the caller.
type ScanInput struct {
	Window    types.Window
	Resources []ResourceInput
}

// Engine is the waste estimation engine. Safe for concurrent Run calls:
// all mutable state is per-run.
type Engine struct {
	cfg        config.EngineConfig
	normalizer *normalizer.Normalizer
	classifier *classifier.Classifier
	cost       *estimator.CostEstimator
	carbon     *estimator.CarbonEstimator
	exemptions *policy.ExemptionEngine
	logger     *telemetry.Logger
	workers    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithExemptions installs an exemption policy engine.
func WithExemptions(e *policy.ExemptionEngine) Option {
	return func(eng *Engine) { eng.exemptions = e }
}

// WithLogger overrides the default logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(eng *Engine) { eng.logger = l }
}

// WithWorkers sets the per-run worker count.
func WithWorkers(n int) Option {
	return func(eng *Engine) {
		if n > 0 {
			eng.workers = n
		}
	}
}

// New builds an engine. Invalid configuration is fatal here, before any
// scan starts, since it would invalidate the whole run.
func New(cfg config.EngineConfig, tables *pricing.Tables, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	e := &Engine{
		cfg:        cfg,
		normalizer: normalizer.New(cfg.TargetInterval(), cfg.MinSamples()),
		classifier: classifier.New(classifier.Config{
			IdleCPUPct:          cfg.IdleCPUPct,
			UnderutilizedCPUPct: cfg.UnderutilizedCPUPct,
			IdleThroughputBps:   cfg.IdleThroughputBytesPerSec,
			Window:              cfg.Window(),
		}),
		cost:    estimator.NewCostEstimator(tables, cfg.UnderutilizedAvoidableFraction),
		carbon:  estimator.NewCarbonEstimator(tables, cfg.UnderutilizedAvoidableFraction),
		logger:  telemetry.NewLogger("engine"),
		workers: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run evaluates every resource in the input and returns one report.
// Per-resource failures degrade to verdicts and warnings on that resource's
// entry; only malformed input aborts.
func (e *Engine) Run(ctx context.Context, input ScanInput) (*types.WasteReport, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	e.logger.LogScanStarted(ctx, len(input.Resources), input.Window)

	entries := make([]types.ResourceReport, len(input.Resources))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := min(e.workers, len(input.Resources))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entries[i] = e.evaluate(ctx, input.Resources[i], input.Window)
			}
		}()
	}
	for i := range input.Resources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return report.Build(input.Window, entries), nil
}

func validateInput(input ScanInput) error {
	if !input.Window.End.After(input.Window.Start) {
		return &MalformedInputError{Reason: "scan window is empty"}
	}
	for _, r := range input.Resources {
		if r.Descriptor.ID == "" {
			return &MalformedInputError{Reason: "descriptor without id"}
		}
		if r.Descriptor.Kind == types.KindComputeInstance && len(r.Metrics) == 0 {
			return &MalformedInputError{ResourceID: r.Descriptor.ID, Reason: "no metric data"}
		}
	}
	return nil
}

// evaluate produces the full per-resource entry: exemption check,
// classification, then cost and carbon estimation run concurrently over
// the same verdict.
func (e *Engine) evaluate(ctx context.Context, r ResourceInput, scanWindow types.Window) types.ResourceReport {
	d := r.Descriptor
	entry := types.ResourceReport{Resource: d}

	if e.exemptions != nil {
		exempt, err := e.exemptions.IsExempt(ctx, d)
		if err != nil {
			entry.Warnings = append(entry.Warnings, fmt.Sprintf("exemption policy: %v", err))
		}
		if exempt {
			e.logger.LogResourceExempt(ctx, d.ID)
			return exemptEntry(entry, scanWindow)
		}
	}

	entry.Verdict = e.classifier.Classify(e.classifierInput(d, r.Metrics, scanWindow))

	var wg sync.WaitGroup
	var costErr, carbonErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		entry.Cost, costErr = e.cost.Estimate(d, entry.Verdict)
	}()
	go func() {
		defer wg.Done()
		entry.Carbon, carbonErr = e.carbon.Estimate(d, entry.Verdict)
	}()
	wg.Wait()

	for _, err := range []error{costErr, carbonErr} {
		if err != nil {
			entry.Warnings = append(entry.Warnings, err.Error())
			e.logger.LogResourceWarning(ctx, d.ID, err.Error())
		}
	}
	return entry
}

// classifierInput normalizes the resource's signals. An insufficient-sample
// failure is downgraded to the classifier's INSUFFICIENT_DATA path with
// whatever partial span exists; it never escapes the scan.
func (e *Engine) classifierInput(d types.ResourceDescriptor, metrics map[types.MetricName][]types.MetricSample, scanWindow types.Window) classifier.Input {
	in := classifier.Input{Descriptor: d, ScanWindow: scanWindow}
	if d.Kind == types.KindBlockVolume {
		return in
	}

	cpu, cpuErr := e.normalizer.Normalize(types.MetricCPUPct, metrics[types.MetricCPUPct], scanWindow)
	network, netErr := e.normalizer.Normalize(types.MetricNetworkBps, metrics[types.MetricNetworkBps], scanWindow)

	var insufficient *normalizer.InsufficientSamplesError
	if errors.As(cpuErr, &insufficient) || errors.As(netErr, &insufficient) {
		in.Insufficient = true
		in.Partial = partialSpan(metrics, scanWindow)
		return in
	}

	in.CPU = cpu
	in.Network = network
	return in
}

// partialSpan reports the evidence span actually covered by the raw
// samples, clipped to the scan window.
func partialSpan(metrics map[types.MetricName][]types.MetricSample, scanWindow types.Window) types.Window {
	var first, last time.Time
	for _, samples := range metrics {
		for _, s := range samples {
			if s.Timestamp.IsZero() || !scanWindow.Contains(s.Timestamp) {
				continue
			}
			if first.IsZero() || s.Timestamp.Before(first) {
				first = s.Timestamp
			}
			if s.Timestamp.After(last) {
				last = s.Timestamp
			}
		}
	}
	if first.IsZero() {
		return types.Window{Start: scanWindow.Start, End: scanWindow.Start}
	}
	return types.Window{Start: first, End: last}
}

func exemptEntry(entry types.ResourceReport, scanWindow types.Window) types.ResourceReport {
	entry.Exempt = true
	entry.Verdict = types.UtilizationVerdict{
		Verdict: types.VerdictActive,
		Window:  scanWindow,
		Basis:   "exempt by policy",
	}
	entry.Cost = types.NewEstimate(0, types.UnitUSD, scanWindow)
	entry.Carbon = types.NewEstimate(0, types.UnitKgCO2e, scanWindow)
	return entry
}
