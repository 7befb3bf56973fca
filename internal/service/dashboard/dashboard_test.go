package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/agrichain/internal/bus"
	"github.com/agrichain/agrichain/internal/domain/models"
	"github.com/agrichain/agrichain/internal/registry/product"
	"github.com/agrichain/agrichain/internal/registry/wishlist"
	"github.com/agrichain/agrichain/internal/repository/memstore"
)

func newTestService(t *testing.T) (*Service, *product.Registry, *wishlist.Registry, *bus.Bus) {
	t.Helper()

	store := memstore.NewStore()
	b := bus.New(nil)
	products := product.NewRegistry(store, b, nil)
	wishes := wishlist.NewRegistry(store, b, nil)
	return NewService(products, wishes, nil), products, wishes, b
}

func TestService_RefreshBuildsSnapshot(t *testing.T) {
	svc, products, wishes, _ := newTestService(t)
	ctx := context.Background()

	price := 85.0
	require.NoError(t, products.SaveProduct(ctx, models.RegisteredProduct{
		TrackingID:            "AGR-2025-ABC123",
		ProductName:           "Rice",
		Price:                 &price,
		IsListedInMarketplace: true,
	}))
	require.True(t, wishes.AddToWishlist(ctx, models.WishlistEntry{ProductID: "AGR-2025-ABC123"}))

	svc.Refresh(ctx)

	snap := svc.Snapshot()
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Marketplace, 1)
	assert.Equal(t, 1, snap.WishlistCount)
	assert.False(t, snap.RefreshedAt.IsZero())
}

func TestService_WatchRefreshesOnMutation(t *testing.T) {
	svc, products, _, b := newTestService(t)
	ctx := context.Background()

	unwatch := svc.Watch(b)
	defer unwatch()

	require.NoError(t, products.SaveProduct(ctx, models.RegisteredProduct{
		TrackingID:  "AGR-2025-ABC123",
		ProductName: "Rice",
	}))

	// Dispatch is synchronous, so the snapshot is already current.
	snap := svc.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "AGR-2025-ABC123", snap.Products[0].TrackingID)
}

func TestService_WatchCoversWishlistTopic(t *testing.T) {
	svc, _, wishes, b := newTestService(t)

	unwatch := svc.Watch(b)
	defer unwatch()

	require.True(t, wishes.AddToWishlist(context.Background(), models.WishlistEntry{ProductID: "p1"}))

	assert.Equal(t, 1, svc.Snapshot().WishlistCount)
}

func TestService_UnwatchStopsUpdates(t *testing.T) {
	svc, products, _, b := newTestService(t)
	ctx := context.Background()

	unwatch := svc.Watch(b)
	unwatch()

	require.NoError(t, products.SaveProduct(ctx, models.RegisteredProduct{TrackingID: "AGR-2025-ABC123"}))

	assert.Empty(t, svc.Snapshot().Products)
}
