package emitter

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// PrometheusEmitter exposes the latest report through OTEL metrics, for
// scraping via the Prometheus exporter.
type PrometheusEmitter struct {
	meter metric.Meter

	// Metrics
	avoidableCost       metric.Float64ObservableGauge
	avoidableCarbon     metric.Float64ObservableGauge
	resourcesByVerdict  metric.Int64ObservableGauge
	reportsEmittedTotal metric.Int64Counter
	verdictChangesTotal metric.Int64Counter

	// State for the observable gauges
	mu     sync.RWMutex
	latest *types.WasteReport

	changes *ChangeTracker
}

// NewPrometheusEmitter creates a Prometheus emitter.
func NewPrometheusEmitter() (*PrometheusEmitter, error) {
	e := &PrometheusEmitter{
		meter:   otel.Meter("guardian"),
		changes: NewChangeTracker(),
	}

	if err := e.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return e, nil
}

func (e *PrometheusEmitter) initMetrics() error {
	var err error

	e.avoidableCost, err = e.meter.Float64ObservableGauge(
		"guardian_avoidable_cost_usd",
		metric.WithDescription("Total avoidable cost in the latest report"),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			e.mu.RLock()
			defer e.mu.RUnlock()
			if e.latest != nil {
				o.Observe(e.latest.Summary.TotalAvoidableCostUSD)
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("create avoidable_cost gauge: %w", err)
	}

	e.avoidableCarbon, err = e.meter.Float64ObservableGauge(
		"guardian_avoidable_co2_kg",
		metric.WithDescription("Total avoidable CO2 in the latest report"),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			e.mu.RLock()
			defer e.mu.RUnlock()
			if e.latest != nil {
				o.Observe(e.latest.Summary.TotalAvoidableCO2Kg)
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("create avoidable_co2 gauge: %w", err)
	}

	e.resourcesByVerdict, err = e.meter.Int64ObservableGauge(
		"guardian_resources",
		metric.WithDescription("Resources in the latest report, by verdict"),
		metric.WithInt64Callback(e.observeVerdicts),
	)
	if err != nil {
		return fmt.Errorf("create resources gauge: %w", err)
	}

	e.reportsEmittedTotal, err = e.meter.Int64Counter(
		"guardian_reports_emitted_total",
		metric.WithDescription("Total reports emitted"),
	)
	if err != nil {
		return fmt.Errorf("create reports_emitted counter: %w", err)
	}

	e.verdictChangesTotal, err = e.meter.Int64Counter(
		"guardian_verdict_changes_total",
		metric.WithDescription("Resources whose verdict changed between consecutive reports"),
	)
	if err != nil {
		return fmt.Errorf("create verdict_changes counter: %w", err)
	}

	return nil
}

func (e *PrometheusEmitter) observeVerdicts(_ context.Context, o metric.Int64Observer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.latest == nil {
		return nil
	}
	for verdict, count := range e.latest.Summary.VerdictCounts {
		o.Observe(int64(count), metric.WithAttributes(attribute.String("verdict", string(verdict))))
	}
	return nil
}

// Emit stores the report for the gauges and records counters.
func (e *PrometheusEmitter) Emit(ctx context.Context, report *types.WasteReport) error {
	diffs := e.changes.ComputeDiff(report)
	e.changes.Update(report)

	e.mu.Lock()
	e.latest = report
	e.mu.Unlock()

	e.reportsEmittedTotal.Add(ctx, 1)
	for _, diff := range diffs {
		e.verdictChangesTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", string(diff.Previous)),
			attribute.String("to", string(diff.Current)),
		))
	}
	return nil
}

// Close is a no-op; the meter provider's lifecycle belongs to the caller.
func (e *PrometheusEmitter) Close() error {
	return nil
}
