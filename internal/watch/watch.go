// Package watch re-analyses a watchlist of tickers on a cron schedule.
package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/seenimoa/neuroquant/internal/config"
	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/pkg/models"
)

// ErrAlreadyRunning is returned by Start on a running scheduler.
var ErrAlreadyRunning = errors.New("watch: scheduler already running")

// Analyzer runs one analysis. *engine.Orchestrator satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*models.AnalysisReport, error)
}

// Result is the outcome for one ticker in a round.
type Result struct {
	Ticker string
	Report *models.AnalysisReport
	Err    error
}

// Handler receives every result as soon as it is available.
type Handler func(ctx context.Context, res Result)

// Scheduler analyses every ticker of the watchlist once per tick.
type Scheduler struct {
	analyzer Analyzer
	tickers  []string
	schedule string
	timeout  time.Duration
	handler  Handler

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	round   sync.Mutex // serialises rounds
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHandler sets the per-result callback.
func WithHandler(h Handler) Option {
	return func(s *Scheduler) { s.handler = h }
}

// WithTimeout bounds each ticker's analysis. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New validates the watch config and returns a stopped scheduler.
func New(a Analyzer, cfg config.WatchConfig, opts ...Option) (*Scheduler, error) {
	if a == nil {
		return nil, fmt.Errorf("watch: analyzer: %w", models.ErrCollaboratorUnavailable)
	}
	if len(cfg.Tickers) == 0 {
		return nil, fmt.Errorf("watch: empty watchlist: %w", models.ErrPrecondition)
	}
	spec := cfg.Schedule
	if spec == "" {
		spec = "@every 15m"
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("watch: schedule %q: %w", spec, err)
	}

	s := &Scheduler{
		analyzer: a,
		tickers:  append([]string(nil), cfg.Tickers...),
		schedule: spec,
		cron:     cron.New(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Tickers returns a copy of the watchlist.
func (s *Scheduler) Tickers() []string { return append([]string(nil), s.tickers...) }

// Schedule returns the cron spec in use.
func (s *Scheduler) Schedule() string { return s.schedule }

// RunOnce analyses the whole watchlist sequentially and returns the results
// in watchlist order. A failing ticker does not stop the round.
func (s *Scheduler) RunOnce(ctx context.Context) []Result {
	s.round.Lock()
	defer s.round.Unlock()

	op := logger.StartOperation(ctx, "watch.round", attribute.Int("tickers", len(s.tickers)))
	results := make([]Result, 0, len(s.tickers))
	failed := 0
	for _, t := range s.tickers {
		if ctx.Err() != nil {
			break
		}
		res := s.analyzeOne(op.Context(), t)
		if res.Err != nil {
			failed++
			logger.Warn(op.Context(), "watch analysis failed", "ticker", t, "error", res.Err)
		}
		if s.handler != nil {
			s.handler(op.Context(), res)
		}
		results = append(results, res)
	}
	op.End("analysed", len(results), "failed", failed)
	return results
}

func (s *Scheduler) analyzeOne(ctx context.Context, ticker string) Result {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	r, err := s.analyzer.Analyze(ctx, ticker)
	return Result{Ticker: ticker, Report: r, Err: err}
}

// Start registers the round on the cron schedule and starts it. The first
// round runs at the first tick; call RunOnce beforehand for an immediate one.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("watch: add schedule: %w", err)
	}
	s.cancel = cancel
	s.cron.Start()
	s.running = true
	logger.Info(ctx, "watch scheduler started", "schedule", s.schedule, "tickers", len(s.tickers))
	return nil
}

// Stop cancels in-flight analyses and waits for the running round to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.cron = cron.New()
	s.running = false
}

// Running reports whether the scheduler is started.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
