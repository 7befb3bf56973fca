// Package repository defines the key-value persistence adapter shared by the
// product and wishlist registries. Every registry read re-parses the full
// serialized collection and every mutation overwrites it wholesale; the
// adapter deliberately offers nothing finer-grained than that.
package repository

import "context"

// KeyValueStore is the persistence boundary injected into the registries.
//
// Load returns (nil, nil) when the key is absent. Store replaces the whole
// payload under the key (last writer wins; no optimistic concurrency).
// Delete is idempotent: removing an absent key is not an error.
type KeyValueStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
