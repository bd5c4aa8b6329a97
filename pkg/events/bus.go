package events

import (
	"context"
	"log"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// Handler consumes a single event. Handlers run synchronously on the
// publishing goroutine, in registration order.
type Handler func(Event)

// wildcard is the internal key for SubscribeAll registrations.
const wildcard Type = "*"

type busEntry struct {
	id      string
	handler Handler
}

// Bus is a synchronous in-process Sink with per-type subscriptions.
//
// A panicking handler is recovered and logged so one bad subscriber
// cannot stop delivery to the rest.
type Bus struct {
	mu      sync.RWMutex
	entries map[Type][]busEntry
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{entries: make(map[Type][]busEntry)}
}

// Subscribe registers a handler for one event type and returns a
// subscription id for Unsubscribe.
func (b *Bus) Subscribe(t Type, h Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	b.entries[t] = append(b.entries[t], busEntry{id: id, handler: h})
	return id
}

// SubscribeAll registers a handler invoked for every event type, after
// the type-specific handlers.
func (b *Bus) SubscribeAll(h Handler) string {
	return b.Subscribe(wildcard, h)
}

// Unsubscribe removes a subscription by id. It reports whether the
// subscription existed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for t, entries := range b.entries {
		for i, e := range entries {
			if e.id == id {
				b.entries[t] = append(entries[:i], entries[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish delivers the event to type-specific handlers first, then
// wildcard handlers. The context is accepted to satisfy Sink; delivery
// itself is synchronous and does not observe cancellation.
func (b *Bus) Publish(_ context.Context, e Event) {
	b.mu.RLock()
	specific := append([]busEntry(nil), b.entries[e.EventType()]...)
	all := append([]busEntry(nil), b.entries[wildcard]...)
	b.mu.RUnlock()

	for _, entry := range specific {
		safeCall(entry.handler, e)
	}
	for _, entry := range all {
		safeCall(entry.handler, e)
	}
}

func safeCall(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event handler panicked for %s: %v\n%s", e.EventType(), r, debug.Stack())
		}
	}()
	h(e)
}
