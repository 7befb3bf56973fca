// Package memstore is a volatile in-memory implementation of the key-value
// adapter, used in tests and as a throwaway development backend.
package memstore

import (
	"context"
	"sync"
)

// Store keeps payloads in a mutex-guarded map. Payloads are copied on the way
// in and out so callers can never alias the stored slice.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Load returns the payload stored under key, or (nil, nil) when absent.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// Store overwrites the payload under key.
func (s *Store) Store(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := make([]byte, len(payload))
	copy(in, payload)
	s.data[key] = in
	return nil
}

// Delete removes the key; deleting an absent key succeeds.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
