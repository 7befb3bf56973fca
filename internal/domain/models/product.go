package models

import (
	"crypto/rand"
	"fmt"
	"time"
)

// RegisteredProduct is a product registered by a farmer in the supply chain.
// The JSON layout matches the persisted collection under the
// "agrichain_registered_products" storage key.
type RegisteredProduct struct {
	// ID mirrors TrackingID and exists only for consumers that expect an "id" field.
	ID           string `json:"id,omitempty"`
	TrackingID   string `json:"trackingId"`
	ProductName  string `json:"productName"`
	Category     string `json:"category"`
	Quantity     string `json:"quantity"`
	Unit         string `json:"unit"`
	FarmLocation string `json:"farmLocation"`
	FarmerName   string `json:"farmerName"`
	FarmerEmail  string `json:"farmerEmail,omitempty"`
	FarmerPhone  string `json:"farmerPhone"`
	Description  string `json:"description"`
	// RegisteredDate is set once at registration and never mutated.
	RegisteredDate time.Time `json:"registeredDate"`

	// Mutable commerce fields, patched via ProductPatch.
	Price                 *float64 `json:"price,omitempty"`
	ImageURL              *string  `json:"imageUrl,omitempty"`
	IsListedInMarketplace bool     `json:"isListedInMarketplace"`
}

// MarketplaceEligible reports whether the product belongs in the marketplace
// view: explicitly listed and carrying a price.
func (p RegisteredProduct) MarketplaceEligible() bool {
	return p.IsListedInMarketplace && p.Price != nil
}

// ProductPatch carries a partial update for a registered product. Only the
// mutable commerce fields are patchable; identity and registration fields are
// excluded by construction.
type ProductPatch struct {
	Price                 *float64 `json:"price,omitempty"`
	ImageURL              *string  `json:"imageUrl,omitempty"`
	IsListedInMarketplace *bool    `json:"isListedInMarketplace,omitempty"`
}

// Apply merges the set fields of the patch into the target product.
func (p ProductPatch) Apply(target *RegisteredProduct) {
	if target == nil {
		return
	}
	if p.Price != nil {
		target.Price = p.Price
	}
	if p.ImageURL != nil {
		target.ImageURL = p.ImageURL
	}
	if p.IsListedInMarketplace != nil {
		target.IsListedInMarketplace = *p.IsListedInMarketplace
	}
}

const trackingIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTrackingID generates a tracking identifier of the form AGR-<year>-<suffix>
// with a 6-character random alphanumeric suffix. Uniqueness is probabilistic;
// callers own collision handling.
func NewTrackingID(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken; nothing sensible to recover.
		panic(fmt.Sprintf("tracking id entropy unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = trackingIDAlphabet[int(b)%len(trackingIDAlphabet)]
	}
	return fmt.Sprintf("AGR-%d-%s", now.Year(), string(buf))
}
