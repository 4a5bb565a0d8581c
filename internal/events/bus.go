// Package events carries order change events from the core to observers.
//
// The store's push-based subscription primitive is modelled as an
// in-process bus: the core publishes every accepted transition and the
// UI/collaborator layer subscribes per order id or globally. Delivery is
// best-effort fan-out with no ordering guarantee across subscribers; a
// subscriber whose buffer is full misses the event rather than blocking
// the publisher.
package events

import (
	"sync"
	"time"

	"vendly/internal/domain"
)

const subscriberBuffer = 16

// OrderEvent describes one accepted lifecycle transition.
type OrderEvent struct {
	OrderID   string
	Action    string
	OldStatus domain.Status
	NewStatus domain.Status
	Actor     domain.Role
	ActorID   string
	At        time.Time
}

type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]chan OrderEvent
	all  map[int]chan OrderEvent
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[int]chan OrderEvent),
		all:  make(map[int]chan OrderEvent),
	}
}

// Subscribe registers an observer for a single order. The returned cancel
// function unregisters the observer and closes its channel.
func (b *Bus) Subscribe(orderID string) (<-chan OrderEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan OrderEvent, subscriberBuffer)
	if b.subs[orderID] == nil {
		b.subs[orderID] = make(map[int]chan OrderEvent)
	}
	b.subs[orderID][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[orderID]; ok {
			if c, ok := set[id]; ok {
				delete(set, id)
				close(c)
			}
			if len(set) == 0 {
				delete(b.subs, orderID)
			}
		}
	}
	return ch, cancel
}

// SubscribeAll registers an observer for every order.
func (b *Bus) SubscribeAll() (<-chan OrderEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan OrderEvent, subscriberBuffer)
	b.all[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.all[id]; ok {
			delete(b.all, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish fans the event out to matching subscribers without blocking.
func (b *Bus) Publish(evt OrderEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[evt.OrderID] {
		select {
		case ch <- evt:
		default:
		}
	}
	for _, ch := range b.all {
		select {
		case ch <- evt:
		default:
		}
	}
}
