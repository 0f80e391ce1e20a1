package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-scout/internal/bus"
	"github.com/sells-group/deal-scout/internal/intake"
	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/internal/pipeline"
)

type fakeTicker struct {
	ch chan time.Time
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

func (f *fakeTicker) tick() { f.ch <- time.Now() }

type fakeProcessor struct {
	mu      sync.Mutex
	batches [][]model.CandidateMessage
	summary *pipeline.Summary
	block   chan struct{}
	started chan struct{}
}

func (f *fakeProcessor) ProcessBatch(_ context.Context, msgs []model.CandidateMessage) *pipeline.Summary {
	f.mu.Lock()
	f.batches = append(f.batches, msgs)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.summary != nil {
		return f.summary
	}
	return &pipeline.Summary{}
}

func (f *fakeProcessor) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

type recordingSub struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recordingSub) Send(ev model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSub) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func dealMail(id string) model.CandidateMessage {
	return model.CandidateMessage{
		ID:      id,
		Subject: "Investment opportunity: Acme",
		From:    "deals@angellist.com",
		Body:    "raising a seed round",
	}
}

func sourceOf(msgs ...model.CandidateMessage) intake.Source {
	return intake.SourceFunc(func(context.Context) ([]model.CandidateMessage, error) {
		return msgs, nil
	})
}

func TestScheduler_RunsPassOnStartAndTick(t *testing.T) {
	proc := &fakeProcessor{started: make(chan struct{}, 4)}
	ticker := newFakeTicker()
	s := New(sourceOf(dealMail("m1")), proc, bus.New(), time.Minute, WithTicker(ticker))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	<-proc.started // startup pass
	ticker.tick()
	<-proc.started // tick pass

	cancel()
	<-done
	assert.Equal(t, 2, proc.batchCount())
}

func TestScheduler_FiltersAndCapsBatch(t *testing.T) {
	msgs := []model.CandidateMessage{
		dealMail("m1"),
		{ID: "noise", Subject: "Lunch?", From: "friend@example.com"},
		dealMail("m2"),
		dealMail("m3"),
	}
	proc := &fakeProcessor{}
	s := New(sourceOf(msgs...), proc, bus.New(), time.Minute,
		WithTicker(newFakeTicker()), WithBatchSize(2))

	summary, err := s.runPass(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summary)

	require.Len(t, proc.batches, 1)
	batch := proc.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "m1", batch[0].ID)
	assert.Equal(t, "m2", batch[1].ID)
}

func TestScheduler_BroadcastsOnProductivePass(t *testing.T) {
	proc := &fakeProcessor{
		summary: &pipeline.Summary{
			Created: []model.DealSummary{{ID: "1", CompanyName: "Acme"}},
		},
	}
	b := bus.New()
	sub := &recordingSub{}
	b.Subscribe(sub)

	s := New(sourceOf(dealMail("m1")), proc, b, time.Minute, WithTicker(newFakeTicker()))
	s.pass(context.Background())

	require.Equal(t, 1, sub.count())
	ev := sub.events[0]
	assert.Equal(t, model.EventNewOpportunities, ev.Type)
	assert.Equal(t, 1, ev.Data.Count)
}

func TestScheduler_QuietPassDoesNotBroadcast(t *testing.T) {
	proc := &fakeProcessor{summary: &pipeline.Summary{Skipped: 3}}
	b := bus.New()
	sub := &recordingSub{}
	b.Subscribe(sub)

	s := New(sourceOf(dealMail("m1")), proc, b, time.Minute, WithTicker(newFakeTicker()))
	s.pass(context.Background())

	assert.Zero(t, sub.count())
}

func TestScheduler_TriggerDroppedWhileRunning(t *testing.T) {
	proc := &fakeProcessor{
		block:   make(chan struct{}),
		started: make(chan struct{}, 4),
	}
	ticker := newFakeTicker()
	s := New(sourceOf(dealMail("m1")), proc, bus.New(), time.Minute, WithTicker(ticker))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	<-proc.started // startup pass is now blocked inside ProcessBatch
	s.TriggerNow() // dropped: running flag is set
	s.TriggerNow()
	close(proc.block)

	cancel()
	<-done
	assert.Equal(t, 1, proc.batchCount())
}

func TestScheduler_TriggerNowQueuesPass(t *testing.T) {
	proc := &fakeProcessor{started: make(chan struct{}, 4)}
	s := New(sourceOf(dealMail("m1")), proc, bus.New(), time.Minute, WithTicker(newFakeTicker()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	<-proc.started // startup pass
	s.TriggerNow()
	<-proc.started // triggered pass

	cancel()
	<-done
	assert.Equal(t, 2, proc.batchCount())
}

func TestScheduler_SourceErrorLoggedNotFatal(t *testing.T) {
	src := intake.SourceFunc(func(context.Context) ([]model.CandidateMessage, error) {
		return nil, context.DeadlineExceeded
	})
	proc := &fakeProcessor{}
	s := New(src, proc, bus.New(), time.Minute, WithTicker(newFakeTicker()))

	s.pass(context.Background())
	assert.Zero(t, proc.batchCount())
}
