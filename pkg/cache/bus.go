package cache

import (
	"context"
	"sync"
)

// Invalidation tells the cache that relationship data changed. An empty
// EntityID means everything is suspect and the whole cache is dropped.
type Invalidation struct {
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason,omitempty"`
}

// Bus fans invalidation events out to subscribers in-process. External
// transports (see the zmq and nng listeners) publish onto a Bus after
// decoding their wire format.
type Bus struct {
	subscribers map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription is one receiver of invalidation events.
type Subscription struct {
	channel   chan Invalidation
	bus       *Bus
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBus creates an empty invalidation bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[*Subscription]bool),
		shutdown:    make(chan struct{}),
	}
}

// Subscribe registers a receiver. The subscription ends when ctx is
// cancelled, Unsubscribe is called, or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context) (*Subscription, error) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil, context.Canceled
	}
	b.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		channel: make(chan Invalidation, 100),
		bus:     b,
		cancel:  cancel,
	}

	b.mu.Lock()
	b.subscribers[sub] = true
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish delivers an event to every subscriber. Slow subscribers whose
// buffers are full miss the event rather than blocking the publisher.
func (b *Bus) Publish(ev Invalidation) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.channel <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Shutdown closes every subscription and stops the bus.
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for sub := range b.subscribers {
		sub.close()
		delete(b.subscribers, sub)
	}
	b.mu.Unlock()
}

// Channel returns the subscription's event channel. It closes when the
// subscription ends.
func (s *Subscription) Channel() <-chan Invalidation {
	return s.channel
}

// Unsubscribe removes the subscription from the bus.
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	delete(s.bus.subscribers, s)
	s.bus.mu.Unlock()

	s.close()
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}

// Attach subscribes the cache to the bus and applies invalidations until
// ctx ends. It returns immediately; the returned stop function waits for
// the worker to drain.
func Attach(ctx context.Context, bus *Bus, c *AnalysisCache) (stop func(), err error) {
	sub, err := bus.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub.Channel() {
			if ev.EntityID == "" {
				c.InvalidateAll()
				continue
			}
			c.Invalidate(ev.EntityID)
		}
	}()

	return func() {
		sub.Unsubscribe()
		<-done
	}, nil
}
