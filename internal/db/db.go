package db

import (
	"context"
	"time"
)

// Store is the persistence facade: named, opaque index snapshots plus
// connection lifecycle.
type Store interface {
	Pinger
	SnapshotStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SnapshotStore keeps one opaque blob per index name.
type SnapshotStore interface {
	// Save writes (or overwrites) the snapshot of name.
	Save(ctx context.Context, name string, data []byte) error
	// Load returns the snapshot of name or ErrKeyNotFound.
	Load(ctx context.Context, name string) ([]byte, error)
	// Delete removes the snapshot of name. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all stored snapshots, sorted.
	List(ctx context.Context) ([]string, error)
}
