package dropdown

import "sync"

type EventKind int

const (
	EventResize EventKind = iota
	EventScroll
)

// ViewportEvent reports a change that can move the control relative to the
// screen. Height is the new viewport height for resize events.
type ViewportEvent struct {
	Kind   EventKind
	Height int
}

// EventSource is where an open dropdown listens for viewport changes.
// Subscribe returns the function that removes the listener.
type EventSource interface {
	Subscribe(fn func(ViewportEvent)) (unsubscribe func())
}

// Hub fans viewport events out to the currently open dropdowns. The host
// publishes resize and scroll events from its Update; dropdowns subscribe
// while their popover is open.
type Hub struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func(ViewportEvent)
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[int]func(ViewportEvent))}
}

func (h *Hub) Subscribe(fn func(ViewportEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev to every listener. Listeners are called outside the
// lock so they may unsubscribe themselves.
func (h *Hub) Publish(ev ViewportEvent) {
	h.mu.Lock()
	fns := make([]func(ViewportEvent), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len is the number of attached listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
