// Package memory is a process-local storage backend for tests. Nothing it
// holds survives the process.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/gabapcia/walletfeed/internal/txstore"
)

// Storage is an in-memory key/value store safe for concurrent use.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// Compile-time assertion to ensure *Storage satisfies txstore.Storage
var _ txstore.Storage = (*Storage)(nil)

// New returns an empty Storage.
func New() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

// Load returns a copy of the value stored under key, or nil if absent.
func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(data), nil
}

// Save stores a copy of data under key.
func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = bytes.Clone(data)
	return nil
}
