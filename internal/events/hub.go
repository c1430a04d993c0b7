// Package events is the in-process fan-out hub for order lifecycle events.
// It owns only the transient listener registry; persistence and replay are
// explicitly out of its contract. For a multi-process deployment the same
// contract would need to be backed by an external message channel.
package events

import (
	"log"
	"sync"

	"github.com/multielectric/mesupply/internal/models"
)

// Listener receives one published event. Implementations must not block;
// listeners that bridge to a network transport should hand the event off to
// their own buffered channel.
type Listener func(models.OrderEvent)

// Subscription is the handle returned by Subscribe, used to unsubscribe.
type Subscription struct {
	fn Listener
}

// Hub fans events out to every currently registered listener. It is safe for
// concurrent Subscribe/Unsubscribe/Publish.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a listener and returns its subscription handle.
func (h *Hub) Subscribe(fn Listener) *Subscription {
	sub := &Subscription{fn: fn}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription. Removing an absent or nil subscription
// is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// Publish delivers the event to every listener registered at call time.
// Delivery iterates over a snapshot, so listeners may unsubscribe from
// within their callback, and a panicking listener does not affect the rest.
func (h *Hub) Publish(ev models.OrderEvent) {
	h.mu.RLock()
	snapshot := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	for _, sub := range snapshot {
		deliver(sub.fn, ev)
	}
}

func deliver(fn Listener, ev models.OrderEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("events: listener panic on %s event: %v", ev.Type, r)
		}
	}()
	fn(ev)
}
