package redis

import (
	"context"
	"sort"
	"strings"
)

const indexNamespace = "index:"

func (s *Store) key(name string) string {
	return s.prefix + indexNamespace + name
}

// Save writes the snapshot of an index.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	return s.set(ctx, s.key(name), data)
}

// Load reads the snapshot of an index.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	return s.get(ctx, s.key(name))
}

// Delete removes the snapshot of an index.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.del(ctx, s.key(name))
}

// List returns the names of all stored index snapshots.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.scan(ctx, s.key("*"))
	if err != nil {
		return nil, err
	}

	prefix := s.key("")
	seen := make(map[string]struct{}, len(keys))
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, prefix)
		if name == "" || name == k {
			continue
		}
		// SCAN may return a key more than once
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
