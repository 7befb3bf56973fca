// Package wishlist implements the saved-for-later registry. Failure
// semantics follow the store contract: duplicates and unknown ids degrade to
// a false return, persistence trouble degrades to "nothing happened", and
// only effectful mutations publish a change event.
package wishlist

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/agrichain/agrichain/internal/bus"
	"github.com/agrichain/agrichain/internal/domain/models"
	"github.com/agrichain/agrichain/internal/repository"
)

// StorageKey is the persisted collection key for the wishlist.
const StorageKey = "agrichain_wishlist"

// Registry exposes the wishlist operations over the key-value adapter.
type Registry struct {
	store  repository.KeyValueStore
	bus    *bus.Bus
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistry wires a wishlist registry over the provided persistence backend.
func NewRegistry(store repository.KeyValueStore, b *bus.Bus, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, bus: b, logger: logger, now: time.Now}
}

// GetWishlist returns the full wishlist in insertion order, empty on any
// load or parse failure.
func (r *Registry) GetWishlist(ctx context.Context) []models.WishlistItem {
	return r.loadAll(ctx)
}

// AddToWishlist inserts the entry unless its product id is already present.
// The timestamp is stamped here. Returns false without mutation or
// notification on duplicates and on persistence failure.
func (r *Registry) AddToWishlist(ctx context.Context, entry models.WishlistEntry) bool {
	items := r.loadAll(ctx)

	for _, item := range items {
		if item.ProductID == entry.ProductID {
			return false
		}
	}

	items = append(items, models.WishlistItem{
		WishlistEntry: entry,
		AddedAt:       r.now().UTC(),
	})

	if err := r.persist(ctx, items); err != nil {
		r.logger.Error("failed persisting wishlist add", zap.String("product_id", entry.ProductID), zap.Error(err))
		return false
	}

	r.publish(entry.ProductID)
	return true
}

// RemoveFromWishlist deletes the entry for the product id. Returns false when
// nothing matched.
func (r *Registry) RemoveFromWishlist(ctx context.Context, productID string) bool {
	items := r.loadAll(ctx)

	remaining := make([]models.WishlistItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			remaining = append(remaining, item)
		}
	}
	if len(remaining) == len(items) {
		return false
	}

	if err := r.persist(ctx, remaining); err != nil {
		r.logger.Error("failed persisting wishlist removal", zap.String("product_id", productID), zap.Error(err))
		return false
	}

	r.publish(productID)
	return true
}

// IsInWishlist reports membership for the product id.
func (r *Registry) IsInWishlist(ctx context.Context, productID string) bool {
	for _, item := range r.loadAll(ctx) {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Count returns the number of wishlist entries.
func (r *Registry) Count(ctx context.Context) int {
	return len(r.loadAll(ctx))
}

// Clear deletes the whole wishlist key. It notifies only when entries were
// actually removed, so clearing an empty wishlist stays silent.
func (r *Registry) Clear(ctx context.Context) bool {
	hadEntries := len(r.loadAll(ctx)) > 0

	if err := r.store.Delete(ctx, StorageKey); err != nil {
		r.logger.Error("failed clearing wishlist", zap.Error(err))
		return false
	}

	if hadEntries {
		r.publish("")
	}
	return hadEntries
}

func (r *Registry) loadAll(ctx context.Context) []models.WishlistItem {
	payload, err := r.store.Load(ctx, StorageKey)
	if err != nil {
		r.logger.Warn("wishlist unreadable, treating as empty", zap.Error(err))
		return []models.WishlistItem{}
	}
	if payload == nil {
		return []models.WishlistItem{}
	}

	var items []models.WishlistItem
	if err := json.Unmarshal(payload, &items); err != nil {
		r.logger.Warn("wishlist corrupt, treating as empty", zap.Error(err))
		return []models.WishlistItem{}
	}
	return items
}

func (r *Registry) persist(ctx context.Context, items []models.WishlistItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.store.Store(ctx, StorageKey, payload)
}

func (r *Registry) publish(subject string) {
	if r.bus != nil {
		r.bus.Publish(bus.TopicWishlistUpdated, subject)
	}
}
