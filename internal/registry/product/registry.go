// Package product implements the registered-product registry over the
// key-value persistence adapter. Every read re-parses the full persisted
// collection; every mutation rewrites it and publishes a change event.
package product

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/agrichain/agrichain/internal/bus"
	"github.com/agrichain/agrichain/internal/domain/models"
	"github.com/agrichain/agrichain/internal/repository"
)

// StorageKey is the persisted collection key for registered products.
const StorageKey = "agrichain_registered_products"

// Registry exposes CRUD over registered products plus the derived
// marketplace view.
type Registry struct {
	store  repository.KeyValueStore
	bus    *bus.Bus
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistry wires a product registry over the provided persistence backend.
func NewRegistry(store repository.KeyValueStore, b *bus.Bus, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, bus: b, logger: logger, now: time.Now}
}

// SaveProduct appends the product to the collection and persists it. The
// caller must supply a fresh tracking id; no duplicate check is performed.
func (r *Registry) SaveProduct(ctx context.Context, p models.RegisteredProduct) error {
	products := r.loadAll(ctx)
	products = append(products, p)

	if err := r.persist(ctx, products); err != nil {
		return err
	}

	r.publish(bus.TopicProductRegistered, p.TrackingID)
	return nil
}

// GetAllProducts returns the full collection in insertion order. Any load or
// parse failure degrades to an empty collection.
func (r *Registry) GetAllProducts(ctx context.Context) []models.RegisteredProduct {
	return r.loadAll(ctx)
}

// GetProductByTrackingID returns the product with the given tracking id.
// Absence is reported through the boolean, never as an error.
func (r *Registry) GetProductByTrackingID(ctx context.Context, trackingID string) (models.RegisteredProduct, bool) {
	for _, p := range r.loadAll(ctx) {
		if p.TrackingID == trackingID {
			return p, true
		}
	}
	return models.RegisteredProduct{}, false
}

// UpdateProduct merges the patch into the product with the given tracking id
// and persists the collection. An unknown id is a no-op reported through the
// returned boolean; identity and registration fields are untouchable because
// the patch cannot express them.
func (r *Registry) UpdateProduct(ctx context.Context, trackingID string, patch models.ProductPatch) (bool, error) {
	products := r.loadAll(ctx)

	idx := -1
	for i, p := range products {
		if p.TrackingID == trackingID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	patch.Apply(&products[idx])

	if err := r.persist(ctx, products); err != nil {
		return false, err
	}

	r.publish(bus.TopicProductUpdated, trackingID)
	return true, nil
}

// ListInMarketplace assigns a price and flips the marketplace flag in one
// update.
func (r *Registry) ListInMarketplace(ctx context.Context, trackingID string, price float64) (bool, error) {
	listed := true
	return r.UpdateProduct(ctx, trackingID, models.ProductPatch{
		Price:                 &price,
		IsListedInMarketplace: &listed,
	})
}

// GetMarketplaceProducts returns the products visible in the marketplace:
// explicitly listed and carrying a price.
func (r *Registry) GetMarketplaceProducts(ctx context.Context) []models.RegisteredProduct {
	all := r.loadAll(ctx)
	visible := make([]models.RegisteredProduct, 0, len(all))
	for _, p := range all {
		if p.MarketplaceEligible() {
			visible = append(visible, p)
		}
	}
	return visible
}

// DeleteProduct removes the product with the given tracking id, preserving
// the order of the remaining collection. An unknown id is a no-op.
func (r *Registry) DeleteProduct(ctx context.Context, trackingID string) (bool, error) {
	products := r.loadAll(ctx)

	remaining := make([]models.RegisteredProduct, 0, len(products))
	for _, p := range products {
		if p.TrackingID != trackingID {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == len(products) {
		return false, nil
	}

	if err := r.persist(ctx, remaining); err != nil {
		return false, err
	}

	r.publish(bus.TopicProductDeleted, trackingID)
	return true, nil
}

// NewRegistration stamps identity and registration fields onto a product
// draft: tracking id (mirrored as ID) and the registration timestamp.
func (r *Registry) NewRegistration(draft models.RegisteredProduct) models.RegisteredProduct {
	now := r.now().UTC()
	draft.TrackingID = models.NewTrackingID(now)
	draft.ID = draft.TrackingID
	draft.RegisteredDate = now
	return draft
}

func (r *Registry) loadAll(ctx context.Context) []models.RegisteredProduct {
	payload, err := r.store.Load(ctx, StorageKey)
	if err != nil {
		r.logger.Warn("product collection unreadable, treating as empty", zap.Error(err))
		return []models.RegisteredProduct{}
	}
	if payload == nil {
		return []models.RegisteredProduct{}
	}

	var products []models.RegisteredProduct
	if err := json.Unmarshal(payload, &products); err != nil {
		// Corrupt state is swallowed so callers keep working; the stored
		// collection will be overwritten by the next mutation.
		r.logger.Warn("product collection corrupt, treating as empty", zap.Error(err))
		return []models.RegisteredProduct{}
	}
	return products
}

func (r *Registry) persist(ctx context.Context, products []models.RegisteredProduct) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return r.store.Store(ctx, StorageKey, payload)
}

func (r *Registry) publish(topic bus.Topic, subject string) {
	if r.bus != nil {
		r.bus.Publish(topic, subject)
	}
}
