// Package memory is an in-process snapshot store for tests and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/textdex/internal/db"
)

var _ db.Store = (*Store)(nil)

// Store keeps snapshots in a map. Stored blobs are copied on the way in and out.
type Store struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	closed bool
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Ping fails only after Close.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// WaitForReady returns immediately; the store is always ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close marks the store closed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Save stores a copy of data under name.
func (s *Store) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpSave, Err: db.ErrClosed}
	}
	s.blobs[name] = append([]byte(nil), data...)
	return nil
}

// Load returns a copy of the snapshot stored under name.
func (s *Store) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpLoad, Err: db.ErrClosed}
	}
	data, ok := s.blobs[name]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpRemove, Err: db.ErrClosed}
	}
	delete(s.blobs, name)
	return nil
}

// List returns the stored names, sorted.
func (s *Store) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpList, Err: db.ErrClosed}
	}
	names := make([]string, 0, len(s.blobs))
	for name := range s.blobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
