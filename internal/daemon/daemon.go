// Package daemon runs guardian as a long-lived process: periodic scans, a
// metrics endpoint, health checks, and graceful shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/purvarane2002/cloud-cost-guardian/telemetry"
)

// Scanner executes one full scan cycle: collect, evaluate, emit.
type Scanner interface {
	Scan(ctx context.Context) error
}

// Config holds daemon configuration
type Config struct {
	Interval    time.Duration
	MetricsAddr string
}

// Daemon manages the continuous scan loop
type Daemon struct {
	cfg       Config
	scanner   Scanner
	logger    *telemetry.Logger
	startTime time.Time
	scanCount atomic.Int64
	lastError atomic.Value
}

// New creates a daemon around a scanner.
func New(cfg Config, scanner Scanner, logger *telemetry.Logger) (*Daemon, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("daemon: interval must be positive (got %v)", cfg.Interval)
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":2112"
	}
	if logger == nil {
		logger = telemetry.NewLogger("daemon")
	}
	return &Daemon{
		cfg:       cfg,
		scanner:   scanner,
		logger:    logger,
		startTime: time.Now(),
	}, nil
}

// Run blocks until the context is cancelled, a termination signal arrives,
// or one of the actors fails. The scan loop, metrics server, and signal
// handler run as one group: when any stops, all stop.
func (d *Daemon) Run(ctx context.Context) error {
	var g run.Group

	loopCtx, cancelLoop := context.WithCancel(ctx)
	g.Add(
		func() error { return d.scanLoop(loopCtx) },
		func(error) { cancelLoop() },
	)

	server := &http.Server{
		Addr:              d.cfg.MetricsAddr,
		Handler:           d.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Add(
		func() error {
			d.logger.WithContext(ctx).Info().Str("addr", d.cfg.MetricsAddr).Msg("starting metrics server")
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		},
	)

	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	err := g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) || errors.Is(err, context.Canceled) {
		d.logger.WithContext(ctx).Info().Msg("daemon stopped")
		return nil
	}
	return err
}

// scanLoop scans once immediately, then on every tick. A failed scan is
// logged and retried next interval; only context cancellation stops the
// loop.
func (d *Daemon) scanLoop(ctx context.Context) error {
	d.runScan(ctx)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.runScan(ctx)
		}
	}
}

func (d *Daemon) runScan(ctx context.Context) {
	d.scanCount.Add(1)
	if err := d.scanner.Scan(ctx); err != nil {
		d.lastError.Store(err.Error())
		d.logger.WithContext(ctx).Error().Err(err).Msg("scan cycle failed")
		return
	}
	d.lastError.Store("")
}

// ScanCount returns the number of scan cycles started.
func (d *Daemon) ScanCount() int64 {
	return d.scanCount.Load()
}

func (d *Daemon) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", d.handleHealth)
	mux.HandleFunc("/-/healthy", handleOK)
	mux.HandleFunc("/-/ready", handleOK)
	return mux
}
