// Package telemetry provides structured logging and OpenTelemetry
// instrumentation for Guardian.
package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// OTELHook adds trace and span IDs to every log entry.
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration.
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a logger with the service name attached and the OTEL
// hook installed.
func NewLogger(service string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context for trace propagation.
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for scan lifecycle events.

func (l *Logger) LogScanStarted(ctx context.Context, resources int, window types.Window) {
	l.WithContext(ctx).Info().
		Int("resources", resources).
		Time("window_start", window.Start).
		Time("window_end", window.End).
		Msg("scan started")
}

func (l *Logger) LogScanComplete(ctx context.Context, summary types.ReportSummary, durationMs float64) {
	l.WithContext(ctx).Info().
		Int("resources", summary.Resources).
		Float64("avoidable_cost_usd", summary.TotalAvoidableCostUSD).
		Float64("avoidable_co2_kg", summary.TotalAvoidableCO2Kg).
		Int("unknown", summary.Unknown).
		Float64("duration_ms", durationMs).
		Msg("scan complete")
}

func (l *Logger) LogResourceWarning(ctx context.Context, resourceID, warning string) {
	l.WithContext(ctx).Warn().
		Str("resource_id", resourceID).
		Str("warning", warning).
		Msg("estimate degraded")
}

func (l *Logger) LogResourceExempt(ctx context.Context, resourceID string) {
	l.WithContext(ctx).Debug().
		Str("resource_id", resourceID).
		Msg("resource exempt by policy")
}

func (l *Logger) LogEmitError(ctx context.Context, sink string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("sink", sink).
		Msg("report emit failed")
}
