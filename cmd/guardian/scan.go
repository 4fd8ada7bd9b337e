package main

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/purvarane2002/cloud-cost-guardian/config"
	"github.com/purvarane2002/cloud-cost-guardian/engine"
	"github.com/purvarane2002/cloud-cost-guardian/internal/emitter"
	"github.com/purvarane2002/cloud-cost-guardian/journal"
	"github.com/purvarane2002/cloud-cost-guardian/policy"
	"github.com/purvarane2002/cloud-cost-guardian/pricing"
	"github.com/purvarane2002/cloud-cost-guardian/providers"
	awsprovider "github.com/purvarane2002/cloud-cost-guardian/providers/aws"
	"github.com/purvarane2002/cloud-cost-guardian/storage"
	"github.com/purvarane2002/cloud-cost-guardian/telemetry"
	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// pipeline wires one scan cycle end to end: collect, evaluate, persist,
// emit. Shared by the one-shot scan command and the daemon.
type pipeline struct {
	cfg       *config.Config
	engine    *engine.Engine
	provider  providers.Provider
	emit      emitter.Emitter
	store     *storage.ReportStore
	journal   *journal.Journal
	logger    *telemetry.Logger
	telemetry *telemetry.Provider
}

// newPipeline builds the pipeline from configuration. extra emitters (a
// daemon's Prometheus emitter, for example) join the configured sinks.
func newPipeline(ctx context.Context, cfg *config.Config, extra ...emitter.Emitter) (*pipeline, error) {
	logger := telemetry.NewLogger(cfg.OTEL.ServiceName)

	tables, err := loadTables(cfg)
	if err != nil {
		return nil, err
	}

	exemptions, err := loadExemptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(cfg.Engine, tables,
		engine.WithExemptions(exemptions),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	provider, err := awsprovider.NewProvider(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}

	emitters, err := buildEmitters(ctx, cfg, extra)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:      cfg,
		engine:   eng,
		provider: provider,
		emit:     emitter.NewMultiEmitter(emitters...),
		logger:   logger,
	}

	if cfg.Output.StorePath != "" {
		store, err := storage.OpenReportStore(cfg.Output.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open report store: %w", err)
		}
		p.store = store

		jrnl, err := journal.Open(cfg.Output.StorePath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		p.journal = jrnl
	}

	p.telemetry, err = telemetry.NewProvider(ctx, cfg.OTEL)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}

	return p, nil
}

// Scan runs one full cycle. Implements daemon.Scanner.
func (p *pipeline) Scan(ctx context.Context) error {
	ctx, span := p.telemetry.StartSpan(ctx, "scan")
	defer span.End()

	started := time.Now()
	window := providers.ScanWindowEndingNow(p.cfg.Engine.Window())

	input, err := providers.Collect(ctx, p.provider, window)
	if err != nil {
		p.recordFailure(ctx, err)
		return err
	}
	p.journalAppend(journal.EntryScanStarted, "", map[string]any{
		"resources": len(input.Resources),
		"window":    window,
	})

	report, err := p.engine.Run(ctx, input)
	if err != nil {
		p.recordFailure(ctx, err)
		return err
	}
	for _, entry := range report.Resources {
		p.journalAppend(journal.EntryResourceEvaluated, entry.Resource.ID, entry.Verdict)
	}

	if p.store != nil {
		if err := p.store.Save(report); err != nil {
			return fmt.Errorf("failed to persist report: %w", err)
		}
	}

	if err := p.emit.Emit(ctx, report); err != nil {
		p.logger.LogEmitError(ctx, "report", err)
		return err
	}
	p.journalAppend(journal.EntryReportEmitted, "", report.Summary)

	elapsed := time.Since(started)
	p.telemetry.RecordScan(ctx, p.cfg.AWS.Region, report.Summary.Resources, elapsed)
	p.logger.LogScanComplete(ctx, report.Summary, float64(elapsed.Milliseconds()))
	return nil
}

// Latest returns the newest persisted report.
func (p *pipeline) Latest() (*types.WasteReport, error) {
	if p.store == nil {
		return nil, fmt.Errorf("no report store configured")
	}
	return p.store.Latest()
}

// Close releases the pipeline's resources.
func (p *pipeline) Close() {
	if p.journal != nil {
		_ = p.journal.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
	_ = p.emit.Close()
	if p.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.telemetry.Shutdown(ctx)
	}
}

func (p *pipeline) recordFailure(ctx context.Context, err error) {
	p.telemetry.RecordScanError(ctx, p.cfg.AWS.Region)
	p.journalAppendError(journal.EntryScanFailed, err)
}

func (p *pipeline) journalAppend(entryType journal.EntryType, resourceID string, data any) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Append(entryType, resourceID, data); err != nil {
		p.logger.Error().Err(err).Msg("failed to write journal entry")
	}
}

func (p *pipeline) journalAppendError(entryType journal.EntryType, cause error) {
	if p.journal == nil {
		return
	}
	if err := p.journal.AppendError(entryType, "", nil, cause); err != nil {
		p.logger.Error().Err(err).Msg("failed to write journal entry")
	}
}

func loadTables(cfg *config.Config) (*pricing.Tables, error) {
	if cfg.Tables.Path == "" {
		return pricing.Builtin(), nil
	}
	tables, err := pricing.Load(cfg.Tables.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing tables: %w", err)
	}
	return tables, nil
}

func loadExemptions(ctx context.Context, cfg *config.Config) (*policy.ExemptionEngine, error) {
	if cfg.Policy.Path == "" {
		return policy.NewDefaultExemptionEngine(ctx)
	}
	return policy.LoadExemptionEngine(ctx, cfg.Policy.Path)
}

func buildEmitters(ctx context.Context, cfg *config.Config, extra []emitter.Emitter) ([]emitter.Emitter, error) {
	emitters := extra

	if cfg.Output.JSONPath == "-" {
		emitters = append(emitters, emitter.NewJSONEmitter())
	} else if cfg.Output.JSONPath != "" {
		jsonEmitter, err := emitter.NewJSONFileEmitter(cfg.Output.JSONPath)
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, jsonEmitter)
	}

	if cfg.Output.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config for S3 sink: %w", err)
		}
		emitters = append(emitters, emitter.NewS3Emitter(s3.NewFromConfig(awsCfg), cfg.Output.S3Bucket, cfg.Output.S3Prefix))
	}

	return emitters, nil
}
