// Package bus is the change notification bridge between the registries and
// any views observing them. Dispatch is synchronous and in subscription
// order; subscribers are expected to react with a full re-read of the
// relevant registry rather than interpreting the event as a diff.
package bus

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Topic names a category of store mutation.
type Topic string

const (
	TopicProductRegistered Topic = "product.registered"
	TopicProductUpdated    Topic = "product.updated"
	TopicProductDeleted    Topic = "product.deleted"
	TopicWishlistUpdated   Topic = "wishlist.updated"
)

// Event describes a single effectful mutation.
type Event struct {
	ID      string    `json:"id"`
	Topic   Topic     `json:"topic"`
	Subject string    `json:"subject"` // tracking id or product id touched by the mutation
	At      time.Time `json:"at"`
}

// Handler receives published events.
type Handler func(Event)

type subscriber struct {
	id      int
	handler Handler
}

// Bus fans mutation events out to registered handlers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscriber
	nextID int
	logger *zap.Logger
}

// New constructs an empty bus.
func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{subs: make(map[Topic][]subscriber), logger: logger}
}

// Subscribe registers a handler for a topic and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, handler: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		current := b.subs[topic]
		for i, sub := range current {
			if sub.id == id {
				b.subs[topic] = append(current[:i:i], current[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers an event to every handler subscribed to the topic,
// synchronously and in subscription order.
func (b *Bus) Publish(topic Topic, subject string) {
	event := Event{
		ID:      uuid.NewString(),
		Topic:   topic,
		Subject: subject,
		At:      time.Now().UTC(),
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[topic]))
	for i, sub := range b.subs[topic] {
		handlers[i] = sub.handler
	}
	b.mu.RUnlock()

	b.logger.Debug("publishing event",
		zap.String("topic", string(topic)),
		zap.String("subject", subject),
		zap.Int("subscribers", len(handlers)))

	// Handlers run outside the lock so they may subscribe or unsubscribe.
	for _, h := range handlers {
		h(event)
	}
}
