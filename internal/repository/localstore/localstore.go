// Package localstore persists each storage key as a single JSON file under a
// root directory, surviving process restarts the way browser-local storage
// survives page reloads.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store is a file-backed implementation of repository.KeyValueStore.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore ensures the root directory exists and returns a file-backed store.
func NewStore(root string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if root == "" {
		return nil, errors.New("storage root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Load reads the payload stored under key, or (nil, nil) when absent.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read key %s: %w", key, err)
	}
	return payload, nil
}

// Store overwrites the payload under key. The write goes through a temporary
// file plus rename so a crash mid-write never leaves a truncated collection.
func (s *Store) Store(_ context.Context, key string, payload []byte) error {
	target := s.path(key)

	tmp, err := os.CreateTemp(s.root, key+".*")
	if err != nil {
		return fmt.Errorf("create temp file for key %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("flush key %s: %w", key, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit key %s: %w", key, err)
	}

	s.logger.Debug("key persisted", zap.String("key", key), zap.Int("bytes", len(payload)))
	return nil
}

// Delete removes the key; deleting an absent key succeeds.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, key+".json")
}
