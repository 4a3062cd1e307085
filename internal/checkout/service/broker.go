package service

import (
	"sync"

	"bookmyworkspace/pkg/model"
)

const subscriberBuffer = 8

// Broker fans session updates out to live subscribers, one set per session.
// Slow subscribers miss intermediate updates rather than blocking writers.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan *model.CheckoutSession]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan *model.CheckoutSession]struct{})}
}

// Subscribe returns a channel of updates for the session and a cancel func.
// The channel is closed on cancel or when the session is closed.
func (b *Broker) Subscribe(id string) (<-chan *model.CheckoutSession, func()) {
	ch := make(chan *model.CheckoutSession, subscriberBuffer)

	b.mu.Lock()
	if b.subs[id] == nil {
		b.subs[id] = make(map[chan *model.CheckoutSession]struct{})
	}
	b.subs[id][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.subs[id]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(b.subs, id)
				}
			}
		})
	}
	return ch, cancel
}

func (b *Broker) Publish(session *model.CheckoutSession) {
	snapshot := *session

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[session.ID] {
		select {
		case ch <- &snapshot:
		default:
		}
	}
}

// Close ends every subscription of the session.
func (b *Broker) Close(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[id] {
		close(ch)
	}
	delete(b.subs, id)
}

func (b *Broker) Subscribers(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[id])
}
