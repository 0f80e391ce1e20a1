// Package bus fans out pipeline events to connected WebSocket clients.
package bus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/model"
)

// Subscriber receives events. Send must not block indefinitely; a failed
// Send gets the subscriber pruned.
type Subscriber interface {
	Send(event model.Event) error
}

// Bus is an in-process broadcast hub. Subscribers register and unregister
// as connections come and go; Broadcast delivers to a snapshot of the
// current set so a slow subscriber cannot block registration.
type Bus struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[Subscriber]struct{})}
}

// Subscribe registers a subscriber.
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[s] = struct{}{}
}

// Unsubscribe removes a subscriber. Unknown subscribers are a no-op.
func (b *Bus) Unsubscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}

// Count returns the number of registered subscribers.
func (b *Bus) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Broadcast delivers the event to every subscriber. Subscribers whose Send
// fails are pruned; delivery happens outside the lock.
func (b *Bus) Broadcast(event model.Event) {
	b.mu.Lock()
	snapshot := make([]Subscriber, 0, len(b.subs))
	for s := range b.subs {
		snapshot = append(snapshot, s)
	}
	b.mu.Unlock()

	var dead []Subscriber
	for _, s := range snapshot {
		if err := s.Send(event); err != nil {
			dead = append(dead, s)
		}
	}
	if len(dead) == 0 {
		return
	}

	b.mu.Lock()
	for _, s := range dead {
		delete(b.subs, s)
	}
	remaining := len(b.subs)
	b.mu.Unlock()

	zap.L().Debug("pruned dead subscribers",
		zap.Int("pruned", len(dead)),
		zap.Int("remaining", remaining))
}

// NewOpportunities builds the event broadcast after a productive pipeline
// pass.
func NewOpportunities(deals []model.DealSummary) model.Event {
	return model.Event{
		Type: model.EventNewOpportunities,
		Data: model.EventData{
			Count: len(deals),
			Deals: deals,
		},
	}
}
