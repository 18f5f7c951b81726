package stream

import (
	"sync"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/models"
)

const subscriberBuffer = 64

// Broker fans synthesized price updates out to in-process subscribers.
// Publishing never blocks: a subscriber that falls behind its buffer loses
// updates, and publishing with zero subscribers is a no-op.
type Broker struct {
	mu     sync.RWMutex
	subs   map[chan models.PriceUpdate]struct{}
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan models.PriceUpdate]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func is
// idempotent and must be called to release the subscription.
func (b *Broker) Subscribe() (<-chan models.PriceUpdate, func()) {
	ch := make(chan models.PriceUpdate, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

func (b *Broker) Publish(u models.PriceUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- u:
		default:
			// subscriber is behind; drop rather than stall the round
		}
	}
}

func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close drops all subscribers. Publish becomes a no-op afterwards.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
