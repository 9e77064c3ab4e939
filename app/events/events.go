// Package events provides the in-process publish/subscribe bus used to
// notify interested components (dashboards, pollers) about entity
// changes. The bus is constructed by the application entry point and
// injected into whichever service needs it; there is no package-level
// instance.
package events

import "sync"

// Topics published by the core services
const (
	TopicSaleCreated         = "sale.created"
	TopicSaleDeleted         = "sale.deleted"
	TopicStockChanged        = "inventory.stock_changed"
	TopicRepairCreated       = "repair.created"
	TopicRepairStatusChanged = "repair.status_changed"
)

// Event is a single notification
type Event struct {
	Topic   string
	Payload interface{}
}

// Handler receives published events
type Handler func(Event)

// Bus is a minimal synchronous pub/sub bus. Publish calls handlers on
// the publisher's goroutine, after the originating transaction has
// committed; handlers must not block.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

// Subscribe registers h for topic. An empty topic subscribes to
// everything.
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], h)
}

// Publish delivers the event to all handlers for its topic and to
// wildcard subscribers. A nil bus is valid and drops the event, so
// services can run without notification wiring (tests do).
func (b *Bus) Publish(topic string, payload interface{}) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]Handler{}, b.subs[topic]...)
	handlers = append(handlers, b.subs[""]...)
	b.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload}
	for _, h := range handlers {
		h(ev)
	}
}
