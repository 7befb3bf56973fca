package models

import "time"

// WishlistEntry is the caller-supplied portion of a wishlist item; the
// registry stamps AddedAt at insertion time.
type WishlistEntry struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage"`
	Price        float64 `json:"price"`
	Unit         string  `json:"unit"`
	Farmer       string  `json:"farmer"`
	Location     string  `json:"location"`
}

// WishlistItem is a saved-for-later product reference, unique per ProductID
// within the store. Persisted under the "agrichain_wishlist" storage key.
type WishlistItem struct {
	WishlistEntry
	AddedAt time.Time `json:"addedAt"`
}
