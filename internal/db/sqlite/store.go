// Package sqlite keeps every index snapshot in its own SQLite file,
// <dir>/<name>.rsi, holding a single-row snapshot table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver

	"github.com/kailas-cloud/textdex/internal/db"
)

var _ db.Store = (*Store)(nil)

// Ext is the snapshot file extension.
const Ext = ".rsi"

const schema = `CREATE TABLE IF NOT EXISTS snapshot (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	data     BLOB    NOT NULL,
	saved_at INTEGER NOT NULL
)`

// Store is a directory of per-index SQLite files. Open handles are cached
// per index and released by Delete and Close.
type Store struct {
	dir string

	mu     sync.Mutex
	conns  map[string]*sql.DB
	closed bool
}

// NewStore creates the directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	return &Store{dir: dir, conns: make(map[string]*sql.DB)}, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+Ext)
}

// Ping checks that the snapshot directory is still usable.
func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if !info.IsDir() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%s is not a directory", s.dir)}
	}
	return nil
}

// WaitForReady checks the directory once; local files need no polling.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close releases every cached handle.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, name)
	}
	s.closed = true
}

// conn returns the cached handle for name, opening the file when create is
// set or the file already exists.
func (s *Store) conn(ctx context.Context, name string, create bool) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, db.ErrClosed
	}
	if conn, ok := s.conns[name]; ok {
		return conn, nil
	}

	path := s.path(name)
	if !create {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, db.ErrKeyNotFound
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	// one writer per file
	conn.SetMaxOpenConns(1)
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, &db.Error{Op: db.OpSchema, Err: err}
	}
	s.conns[name] = conn
	return conn, nil
}

// Save replaces the snapshot of name inside a transaction.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	conn, err := s.conn(ctx, name, true)
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpSave, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot(id, data, saved_at) VALUES(1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		data, time.Now().Unix())
	if err != nil {
		return &db.Error{Op: db.OpSave, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpSave, Err: err}
	}
	return nil
}

// Load reads the snapshot of name.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	conn, err := s.conn(ctx, name, false)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = conn.QueryRowContext(ctx, `SELECT data FROM snapshot WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpLoad, Err: err}
	}
	return data, nil
}

// Delete closes the handle of name and removes its file.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conn, ok := s.conns[name]; ok {
		_ = conn.Close()
		delete(s.conns, name)
	}
	path := s.path(name)
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &db.Error{Op: db.OpRemove, Err: err}
		}
	}
	return nil
}

// List returns the names of all snapshot files in the directory.
func (s *Store) List(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &db.Error{Op: db.OpList, Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Ext))
	}
	sort.Strings(names)
	return names, nil
}
