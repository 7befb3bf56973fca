package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesSubscriber(t *testing.T) {
	b := New(nil)

	var received []Event
	b.Subscribe(TopicWishlistUpdated, func(e Event) {
		received = append(received, e)
	})

	b.Publish(TopicWishlistUpdated, "prod-1")

	require.Len(t, received, 1)
	assert.Equal(t, TopicWishlistUpdated, received[0].Topic)
	assert.Equal(t, "prod-1", received[0].Subject)
	assert.NotEmpty(t, received[0].ID)
	assert.False(t, received[0].At.IsZero())
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	b := New(nil)

	var wishlistEvents, productEvents int
	b.Subscribe(TopicWishlistUpdated, func(Event) { wishlistEvents++ })
	b.Subscribe(TopicProductRegistered, func(Event) { productEvents++ })

	b.Publish(TopicProductRegistered, "AGR-2025-ABC123")

	assert.Zero(t, wishlistEvents)
	assert.Equal(t, 1, productEvents)
}

func TestBus_DispatchOrderFollowsSubscriptionOrder(t *testing.T) {
	b := New(nil)

	var order []string
	b.Subscribe(TopicProductUpdated, func(Event) { order = append(order, "first") })
	b.Subscribe(TopicProductUpdated, func(Event) { order = append(order, "second") })

	b.Publish(TopicProductUpdated, "x")

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New(nil)

	var count int
	cancel := b.Subscribe(TopicProductDeleted, func(Event) { count++ })

	b.Publish(TopicProductDeleted, "a")
	cancel()
	b.Publish(TopicProductDeleted, "b")

	assert.Equal(t, 1, count)

	// Unsubscribing twice must be harmless.
	cancel()
	b.Publish(TopicProductDeleted, "c")
	assert.Equal(t, 1, count)
}

func TestBus_EventIDsAreUnique(t *testing.T) {
	b := New(nil)

	seen := make(map[string]bool)
	b.Subscribe(TopicWishlistUpdated, func(e Event) { seen[e.ID] = true })

	for i := 0; i < 10; i++ {
		b.Publish(TopicWishlistUpdated, "p")
	}

	assert.Len(t, seen, 10)
}
