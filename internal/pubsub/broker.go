// Package pubsub fans events out from one producer to any number of
// bubbletea listeners. The logger publishes entries through a broker so
// the debug overlay refreshes without polling.
package pubsub

import (
	"context"
	"sync"
	"time"
)

// subscriberBuffer is how many undelivered events a subscription holds
// before the broker starts dropping for that subscriber.
const subscriberBuffer = 64

// Event wraps a payload with the time it was published.
type Event[T any] struct {
	Payload T
	At      time.Time
}

// Broker delivers published payloads to every live subscriber.
type Broker[T any] struct {
	mu     sync.RWMutex
	subs   map[chan Event[T]]struct{}
	closed bool
}

// NewBroker returns an open broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[chan Event[T]]struct{})}
}

// Subscribe registers a listener. The subscription ends and its channel
// closes when ctx is cancelled or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		delete(b.subs, ch)
		close(ch)
	}()

	return ch
}

// Publish sends payload to all subscribers without blocking. A subscriber
// that has fallen subscriberBuffer events behind misses this one.
func (b *Broker[T]) Publish(payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	ev := Event[T]{Payload: payload, At: time.Now()}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close shuts the broker down and closes every subscriber channel.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

// SubscriberCount reports how many subscriptions are live.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
