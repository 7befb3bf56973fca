package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/agrichain/internal/bus"
	"github.com/agrichain/agrichain/internal/domain/models"
	"github.com/agrichain/agrichain/internal/repository/memstore"
)

func newTestRegistry(t *testing.T) (*Registry, *bus.Bus) {
	t.Helper()
	b := bus.New(nil)
	return NewRegistry(memstore.NewStore(), b, nil), b
}

func tomatoEntry() models.WishlistEntry {
	return models.WishlistEntry{
		ProductID:   "AGR-2025-TOMATO",
		ProductName: "Organic Tomatoes",
		Price:       60,
		Unit:        "kg",
		Farmer:      "Rajan Singh",
		Location:    "Village Farm, Punjab",
	}
}

func TestRegistry_AddStampsTimestamp(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.now = func() time.Time { return time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC) }

	require.True(t, r.AddToWishlist(context.Background(), tomatoEntry()))

	items := r.GetWishlist(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "AGR-2025-TOMATO", items[0].ProductID)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC), items[0].AddedAt)
}

func TestRegistry_DuplicateAddIsRejected(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	require.True(t, r.AddToWishlist(ctx, tomatoEntry()))

	dup := tomatoEntry()
	dup.ProductName = "Different name, same product id"
	assert.False(t, r.AddToWishlist(ctx, dup))

	items := r.GetWishlist(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "Organic Tomatoes", items[0].ProductName)
}

func TestRegistry_AddNotifiesOnlyOnSuccess(t *testing.T) {
	r, b := newTestRegistry(t)
	ctx := context.Background()

	var events int
	b.Subscribe(bus.TopicWishlistUpdated, func(bus.Event) { events++ })

	require.True(t, r.AddToWishlist(ctx, tomatoEntry()))
	assert.Equal(t, 1, events)

	assert.False(t, r.AddToWishlist(ctx, tomatoEntry()))
	assert.Equal(t, 1, events)
}

func TestRegistry_RemoveUnknownReturnsFalse(t *testing.T) {
	r, b := newTestRegistry(t)
	ctx := context.Background()

	require.True(t, r.AddToWishlist(ctx, tomatoEntry()))

	var events int
	b.Subscribe(bus.TopicWishlistUpdated, func(bus.Event) { events++ })

	assert.False(t, r.RemoveFromWishlist(ctx, "AGR-2025-NOPE00"))
	assert.Zero(t, events)
	assert.Equal(t, 1, r.Count(ctx))
}

func TestRegistry_RemoveExisting(t *testing.T) {
	r, b := newTestRegistry(t)
	ctx := context.Background()

	require.True(t, r.AddToWishlist(ctx, tomatoEntry()))

	var events int
	b.Subscribe(bus.TopicWishlistUpdated, func(bus.Event) { events++ })

	assert.True(t, r.RemoveFromWishlist(ctx, "AGR-2025-TOMATO"))
	assert.Equal(t, 1, events)
	assert.Zero(t, r.Count(ctx))
}

func TestRegistry_Membership(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	assert.False(t, r.IsInWishlist(ctx, "AGR-2025-TOMATO"))
	require.True(t, r.AddToWishlist(ctx, tomatoEntry()))
	assert.True(t, r.IsInWishlist(ctx, "AGR-2025-TOMATO"))
}

func TestRegistry_ClearNotifiesOnlyWhenNonEmpty(t *testing.T) {
	r, b := newTestRegistry(t)
	ctx := context.Background()

	var events int
	b.Subscribe(bus.TopicWishlistUpdated, func(bus.Event) { events++ })

	// Clearing an already-empty wishlist stays silent.
	assert.False(t, r.Clear(ctx))
	assert.Zero(t, events)

	require.True(t, r.AddToWishlist(ctx, tomatoEntry()))
	events = 0

	assert.True(t, r.Clear(ctx))
	assert.Equal(t, 1, events)
	assert.Empty(t, r.GetWishlist(ctx))
}

func TestRegistry_CorruptCollectionDegradesToEmpty(t *testing.T) {
	store := memstore.NewStore()
	r := NewRegistry(store, bus.New(nil), nil)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, StorageKey, []byte("[[broken")))

	assert.Empty(t, r.GetWishlist(ctx))
	assert.Zero(t, r.Count(ctx))

	// A fresh add works and replaces the corrupt state.
	require.True(t, r.AddToWishlist(ctx, tomatoEntry()))
	assert.Equal(t, 1, r.Count(ctx))
}
