// Package sink fans pipeline output out to UI subscribers.
package sink

import (
	"sync"

	"github.com/google/uuid"

	"github.com/okian/gazeboard/pkg/metrics"
)

const defaultBuffer = 32

// Hub is a non-blocking publish/subscribe fan-out. A subscriber that falls
// behind loses messages instead of stalling the pipeline.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]chan Message
	buffer int
	closed bool
}

// NewHub returns a hub whose subscriptions default to buffer slots.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: make(map[string]chan Message), buffer: buffer}
}

// Subscribe registers a subscriber. buffer <= 0 uses the hub default.
// cancel removes the subscription and closes its channel; it is safe to
// call more than once.
func (h *Hub) Subscribe(buffer int) (string, <-chan Message, func()) {
	if buffer <= 0 {
		buffer = h.buffer
	}
	id := uuid.NewString()
	ch := make(chan Message, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch, func() {}
	}
	h.subs[id] = ch
	n := len(h.subs)
	h.mu.Unlock()
	metrics.UpdateStreamClients(n)

	return id, ch, func() { h.unsubscribe(id) }
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(ch)
	}
	n := len(h.subs)
	h.mu.Unlock()
	if ok {
		metrics.UpdateStreamClients(n)
	}
}

// Publish delivers msg to every subscriber with room for it.
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			metrics.RecordSinkDropped(msg.Type)
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
	metrics.UpdateStreamClients(0)
}
