// Package scheduler drives the periodic intake pass: fetch candidate
// messages, filter them, hand them to the pipeline, and broadcast any
// new opportunities to connected clients.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/bus"
	"github.com/sells-group/deal-scout/internal/intake"
	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/internal/pipeline"
)

// Ticker abstracts time.Ticker so tests can drive passes manually.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Processor is the slice of the pipeline the scheduler drives.
type Processor interface {
	ProcessBatch(ctx context.Context, msgs []model.CandidateMessage) *pipeline.Summary
}

// Scheduler runs intake passes on an interval. At most one pass is in
// flight at a time; ticks and manual triggers that arrive mid-pass are
// dropped rather than queued.
type Scheduler struct {
	source    intake.Source
	processor Processor
	bus       *bus.Bus
	ticker    Ticker
	batchSize int

	running atomic.Bool
	trigger chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTicker replaces the interval ticker, used by tests.
func WithTicker(t Ticker) Option {
	return func(s *Scheduler) { s.ticker = t }
}

// WithBatchSize caps how many filtered candidates a single pass processes.
func WithBatchSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New builds a Scheduler that polls source every interval.
func New(source intake.Source, processor Processor, b *bus.Bus, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:    source,
		processor: processor,
		bus:       b,
		batchSize: 20,
		trigger:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ticker == nil {
		s.ticker = realTicker{t: time.NewTicker(interval)}
	}
	return s
}

// TriggerNow requests an immediate pass. If a pass is already in flight
// the request is dropped: the running pass will pick up the same mail.
func (s *Scheduler) TriggerNow() {
	if s.running.Load() {
		zap.L().Info("scan already in progress, ignoring trigger")
		return
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run executes one pass immediately, then loops until ctx is cancelled.
// A pass that is in flight when ctx is cancelled runs to completion.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.ticker.Stop()

	s.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ticker.C():
			s.pass(ctx)
		case <-s.trigger:
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	defer s.running.Store(false)

	// Once a pass starts it finishes: partial batches would leave deals
	// without verdicts.
	passCtx := context.WithoutCancel(ctx)

	summary, err := s.runPass(passCtx)
	if err != nil {
		zap.L().Error("intake pass failed", zap.Error(err))
		return
	}
	if summary.Productive() {
		s.bus.Broadcast(bus.NewOpportunities(summary.Created))
	}
}

func (s *Scheduler) runPass(ctx context.Context) (*pipeline.Summary, error) {
	start := time.Now()

	messages, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "fetching candidate messages")
	}

	candidates := messages[:0:0]
	for _, msg := range messages {
		if intake.Filter(msg) {
			candidates = append(candidates, msg)
		}
	}
	if len(candidates) > s.batchSize {
		candidates = candidates[:s.batchSize]
	}

	zap.L().Info("intake pass starting",
		zap.Int("fetched", len(messages)),
		zap.Int("candidates", len(candidates)))

	summary := s.processor.ProcessBatch(ctx, candidates)

	zap.L().Info("intake pass complete",
		zap.Int("created", len(summary.Created)),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", time.Since(start)))

	return summary, nil
}
