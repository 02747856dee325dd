package realtime

import (
	"sync"
)

// subKey scopes a subscription to one table within one family. Events for
// other families never reach a subscriber.
type subKey struct {
	table    string
	familyID string
}

// Subscription is one subscriber's buffered event channel.
type Subscription struct {
	key subKey
	ch  chan Event
}

// Events returns the channel change events are delivered on. It is closed
// by Unsubscribe and by Hub.Close.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Hub fans database change events out to subscribers. Delivery is
// best-effort: a subscriber that cannot keep up with its buffer has events
// dropped rather than stalling the feed for everyone else.
type Hub struct {
	mu      sync.Mutex
	subs    map[subKey]map[*Subscription]struct{}
	buf     int
	closed  bool
	dropped func()
}

// NewHub creates a hub whose subscriptions buffer up to buf events.
// onDrop, if non-nil, is called once per dropped event.
func NewHub(buf int, onDrop func()) *Hub {
	if buf <= 0 {
		buf = 64
	}
	return &Hub{
		subs:    make(map[subKey]map[*Subscription]struct{}),
		buf:     buf,
		dropped: onDrop,
	}
}

// Subscribe registers interest in one table's changes within one family.
func (h *Hub) Subscribe(table, familyID string) *Subscription {
	key := subKey{table: table, familyID: familyID}
	sub := &Subscription{key: key, ch: make(chan Event, h.buf)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	if h.subs[key] == nil {
		h.subs[key] = make(map[*Subscription]struct{})
	}
	h.subs[key][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscription and closes its channel. Calling it
// twice is safe.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.key]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.key)
	}
	close(sub.ch)
}

// Publish delivers an event to every subscription on its (table, family)
// pair. Full buffers drop the event for that subscriber only.
func (h *Hub) Publish(ev Event) {
	key := subKey{table: ev.Table, familyID: ev.FamilyID}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subs[key] {
		select {
		case sub.ch <- ev:
		default:
			if h.dropped != nil {
				h.dropped()
			}
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}

// Close shuts the hub down, closing every subscriber channel. Publish and
// Subscribe become no-ops afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for key, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(h.subs, key)
	}
}
