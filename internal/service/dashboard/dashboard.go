// Package dashboard maintains the read-side snapshot consumed by dashboard
// and marketplace views. It subscribes to every store topic and reacts with a
// full re-read; there is no incremental patching.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agrichain/agrichain/internal/bus"
	"github.com/agrichain/agrichain/internal/domain/models"
	"github.com/agrichain/agrichain/internal/registry/product"
	"github.com/agrichain/agrichain/internal/registry/wishlist"
)

// Snapshot is the aggregated view state at a point in time.
type Snapshot struct {
	Products      []models.RegisteredProduct `json:"products"`
	Marketplace   []models.RegisteredProduct `json:"marketplace"`
	WishlistCount int                        `json:"wishlistCount"`
	RefreshedAt   time.Time                  `json:"refreshedAt"`
}

// Service keeps the snapshot current from bus events and the defensive poll.
type Service struct {
	products *product.Registry
	wishlist *wishlist.Registry
	logger   *zap.Logger

	mu   sync.RWMutex
	snap Snapshot
}

// NewService builds the dashboard service over both registries.
func NewService(products *product.Registry, wishlist *wishlist.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{products: products, wishlist: wishlist, logger: logger}
}

// Refresh performs the full re-read of both registries and swaps the snapshot.
func (s *Service) Refresh(ctx context.Context) {
	snap := Snapshot{
		Products:      s.products.GetAllProducts(ctx),
		Marketplace:   s.products.GetMarketplaceProducts(ctx),
		WishlistCount: s.wishlist.Count(ctx),
		RefreshedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Debug("snapshot refreshed",
		zap.Int("products", len(snap.Products)),
		zap.Int("marketplace", len(snap.Marketplace)),
		zap.Int("wishlist_count", snap.WishlistCount))
}

// Snapshot returns the most recent view state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Watch subscribes the service to every store topic on the bus and returns a
// function that detaches all subscriptions.
func (s *Service) Watch(b *bus.Bus) func() {
	topics := []bus.Topic{
		bus.TopicProductRegistered,
		bus.TopicProductUpdated,
		bus.TopicProductDeleted,
		bus.TopicWishlistUpdated,
	}

	cancels := make([]func(), 0, len(topics))
	for _, topic := range topics {
		cancels = append(cancels, b.Subscribe(topic, func(bus.Event) {
			s.Refresh(context.Background())
		}))
	}

	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
