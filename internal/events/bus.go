package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(event *Event)

// SubscriptionID identifies a handler registration
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus fans events out to subscribers by type
type Bus struct {
	mu     sync.RWMutex
	subs   map[EventType][]subscription
	nextID SubscriptionID
	log    zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[EventType][]subscription),
		log:  log.With().Str("service", "events").Logger(),
	}
}

// Subscribe registers handler for eventType
func (b *Bus) Subscribe(eventType EventType, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a registration; unknown ids are ignored
func (b *Bus) Unsubscribe(eventType EventType, id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[eventType]
	for i, s := range subs {
		if s.id == id {
			b.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit stamps and publishes an event built from data
func (b *Bus) Emit(module string, data EventData) {
	b.Publish(&Event{
		Type:      data.EventType(),
		Timestamp: time.Now(),
		Module:    module,
		Data:      data,
	})
}

// Publish delivers event to every handler subscribed to its type.
// A panicking handler is logged and does not stop delivery to the rest.
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[event.Type]))
	copy(subs, b.subs[event.Type])
	b.mu.RUnlock()

	b.log.Debug().
		Str("event_type", string(event.Type)).
		Str("module", event.Module).
		Int("subscribers", len(subs)).
		Msg("Event emitted")

	for _, s := range subs {
		b.deliver(s, event)
	}
}

func (b *Bus) deliver(s subscription, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Msg("Event handler panicked")
		}
	}()
	s.handler(event)
}
