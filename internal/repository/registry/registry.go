// Package registry owns the live indices and their snapshots in the store.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/db"
	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/index"
)

// store is the consumer interface for index snapshots (ISP).
type store interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Registry maps index names to live indices. Creating and deleting indices
// is exclusive; lookups share the lock.
//
// persistMu serializes snapshot writes and deletes.
type Registry struct {
	mu      sync.RWMutex
	indices map[string]*index.Index
	// unloaded holds snapshots in the store that failed to restore. Their
	// names stay reserved until deleted.
	unloaded map[string]error

	persistMu sync.Mutex

	store  store
	opts   index.Options
	logger *zap.Logger
}

// New creates an empty registry over s. Indices are created with opts.
func New(s store, opts index.Options, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		indices:  make(map[string]*index.Index),
		unloaded: make(map[string]error),
		store:    s,
		opts:    opts,
		logger:  logger,
	}
}

// Options returns the options new indices are created with.
func (r *Registry) Options() index.Options { return r.opts }

// Load restores every snapshot in the store. Broken snapshots are logged and
// skipped; their errors come back aggregated while the rest stay loaded.
func (r *Registry) Load(ctx context.Context) (int, error) {
	names, err := r.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}

	var result *multierror.Error
	loaded := 0
	for _, name := range names {
		ix, err := r.restore(ctx, name)
		if err != nil {
			r.logger.Warn("skip index snapshot", zap.String("index", name), zap.Error(err))
			result = multierror.Append(result, fmt.Errorf("index %s: %w", name, err))
			r.mu.Lock()
			r.unloaded[name] = err
			r.mu.Unlock()
			continue
		}

		r.mu.Lock()
		r.indices[ix.Name()] = ix
		delete(r.unloaded, name)
		r.mu.Unlock()
		loaded++
		r.logger.Debug("index restored",
			zap.String("index", name),
			zap.Int("documents", ix.DocCount()),
		)
	}
	return loaded, result.ErrorOrNil()
}

func (r *Registry) restore(ctx context.Context, name string) (*index.Index, error) {
	data, err := r.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	st, err := decodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	if st.Name != name {
		return nil, fmt.Errorf("snapshot is for index %q", st.Name)
	}
	return index.Restore(st, r.opts)
}

// Create registers a new empty index. The name must not be taken by an index,
// an alias or a snapshot that failed to load.
func (r *Registry) Create(name string, settings []byte) (*index.Index, error) {
	ix, err := index.New(name, settings, r.opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indices[name]; exists {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrIndexExists)
	}
	if err, broken := r.unloaded[name]; broken {
		return nil, fmt.Errorf("%s: %w: stored snapshot failed to load (%v); delete it first", name, domain.ErrIndexExists, err)
	}
	if r.aliasedLocked(name) {
		return nil, fmt.Errorf("%s: %w: an alias with that name exists", name, domain.ErrIndexExists)
	}
	r.indices[name] = ix
	return ix, nil
}

// Get returns the index named name. Aliases are not resolved.
func (r *Registry) Get(name string) (*index.Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ix, ok := r.indices[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrIndexNotFound)
	}
	return ix, nil
}

// Resolve returns the index named name, or else every index carrying the
// alias name, ordered by index name.
func (r *Registry) Resolve(name string) ([]*index.Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ix, ok := r.indices[name]; ok {
		return []*index.Index{ix}, nil
	}
	out := r.withAliasLocked(name)
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrIndexNotFound)
	}
	return out, nil
}

// FindAlias returns the indices carrying alias, ordered by name.
func (r *Registry) FindAlias(alias string) ([]*index.Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.withAliasLocked(alias)
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", alias, domain.ErrAliasNotFound)
	}
	return out, nil
}

// AddAlias tags the index name with alias, refusing aliases that shadow an index.
func (r *Registry) AddAlias(name, alias string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ix, ok := r.indices[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, domain.ErrIndexNotFound)
	}
	if _, shadow := r.indices[alias]; shadow {
		return fmt.Errorf("%w: alias %q collides with an index name", domain.ErrInvalidName, alias)
	}
	return ix.AddAlias(alias)
}

// List returns all indices ordered by name.
func (r *Registry) List() []*index.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*index.Index, 0, len(r.indices))
	for _, ix := range r.indices {
		out = append(out, ix)
	}
	sortByName(out)
	return out
}

// Len returns the number of registered indices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.indices)
}

// Delete unregisters the index and removes its snapshot. A snapshot that
// failed to load can be deleted by name as well.
func (r *Registry) Delete(ctx context.Context, name string) error {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.Lock()
	_, live := r.indices[name]
	_, broken := r.unloaded[name]
	if !live && !broken {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", name, domain.ErrIndexNotFound)
	}
	delete(r.indices, name)
	delete(r.unloaded, name)
	r.mu.Unlock()

	if err := r.store.Delete(ctx, name); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	return nil
}

// Flush writes the snapshot of one index.
func (r *Registry) Flush(ctx context.Context, name string) error {
	ix, err := r.Get(name)
	if err != nil {
		return err
	}
	saved, err := r.flush(ctx, ix)
	if err != nil {
		return err
	}
	if !saved {
		return fmt.Errorf("%s: %w", name, domain.ErrIndexNotFound)
	}
	return nil
}

// flush saves ix unless it was deleted or replaced after the caller looked
// it up. saved reports whether a snapshot was written. Export runs under
// persistMu so an older state never overwrites a newer one.
func (r *Registry) flush(ctx context.Context, ix *index.Index) (saved bool, err error) {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	if !r.isLive(ix) {
		return false, nil
	}
	st, err := ix.Export()
	if err != nil {
		return false, err
	}
	data, err := encodeSnapshot(st)
	if err != nil {
		return false, err
	}
	if err := r.store.Save(ctx, ix.Name(), data); err != nil {
		return false, fmt.Errorf("save snapshot %s: %w", ix.Name(), err)
	}
	return true, nil
}

func (r *Registry) isLive(ix *index.Index) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indices[ix.Name()] == ix
}

// FlushAll writes every index snapshot, continuing past failures.
func (r *Registry) FlushAll(ctx context.Context) error {
	var result *multierror.Error
	for _, ix := range r.List() {
		if _, err := r.flush(ctx, ix); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (r *Registry) aliasedLocked(alias string) bool {
	for _, ix := range r.indices {
		if ix.HasAlias(alias) {
			return true
		}
	}
	return false
}

func (r *Registry) withAliasLocked(alias string) []*index.Index {
	var out []*index.Index
	for _, ix := range r.indices {
		if ix.HasAlias(alias) {
			out = append(out, ix)
		}
	}
	sortByName(out)
	return out
}

func sortByName(ixs []*index.Index) {
	sort.Slice(ixs, func(i, j int) bool { return ixs[i].Name() < ixs[j].Name() })
}
