package textdex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
)

// IndexService manages indices and their aliases.
type IndexService struct {
	svc indexUseCase
	obs *observer
}

// Create creates an index. body may carry "settings" (analysis) and
// "mappings"; nil creates an empty index with the preset analyzers.
func (s *IndexService) Create(ctx context.Context, name string, body json.RawMessage) (_ IndexInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index.create", name, start, err) }()

	ix, err := s.svc.Create(ctx, name, body)
	if err != nil {
		return IndexInfo{}, fmt.Errorf("create index: %w", err)
	}
	return toIndexInfo(ix)
}

// Get returns the description of an index.
func (s *IndexService) Get(ctx context.Context, name string) (_ IndexInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index.get", name, start, err) }()

	ix, err := s.svc.Get(ctx, name)
	if err != nil {
		return IndexInfo{}, fmt.Errorf("get index: %w", err)
	}
	return toIndexInfo(ix)
}

// Delete removes an index together with its persisted snapshot.
func (s *IndexService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("index.delete", name, start, err) }()

	if err = s.svc.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}

// Refresh persists the index snapshot.
func (s *IndexService) Refresh(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("index.refresh", name, start, err) }()

	if err = s.svc.Refresh(ctx, name); err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}
	return nil
}

// PutAlias tags an index with alias.
func (s *IndexService) PutAlias(ctx context.Context, name, alias string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("alias.put", name, start, err) }()

	if err = s.svc.PutAlias(ctx, name, alias); err != nil {
		return fmt.Errorf("put alias: %w", err)
	}
	return nil
}

// DeleteAlias removes alias from an index.
func (s *IndexService) DeleteAlias(ctx context.Context, name, alias string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("alias.delete", name, start, err) }()

	if err = s.svc.DeleteAlias(ctx, name, alias); err != nil {
		return fmt.Errorf("delete alias: %w", err)
	}
	return nil
}

// FindAlias returns the names of the indices carrying alias, sorted.
func (s *IndexService) FindAlias(ctx context.Context, alias string) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("alias.find", alias, start, err) }()

	ixs, err := s.svc.FindAlias(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("find alias: %w", err)
	}
	names := make([]string, len(ixs))
	for i, ix := range ixs {
		names[i] = ix.Name()
	}
	return names, nil
}

func toIndexInfo(ix *domindex.Index) (IndexInfo, error) {
	info := IndexInfo{
		Name:      ix.Name(),
		Settings:  ix.Settings(),
		Mappings:  make(map[string]json.RawMessage),
		Aliases:   ix.Aliases(),
		Documents: ix.DocCount(),
	}
	for _, m := range ix.Mappings() {
		raw, err := json.Marshal(m)
		if err != nil {
			return IndexInfo{}, fmt.Errorf("encode mapping %s: %w", m.TypeName(), err)
		}
		info.Mappings[m.TypeName()] = raw
	}
	return info, nil
}

// MappingService manages the document types of one index.
type MappingService struct {
	index string
	svc   mappingUseCase
	obs   *observer
}

// Put installs or replaces the mapping of docType. Stored documents keep the
// values they were converted with.
func (s *MappingService) Put(ctx context.Context, docType string, mapping json.RawMessage) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.put", s.index, start, err) }()

	if _, err = s.svc.Put(ctx, s.index, docType, mapping); err != nil {
		return fmt.Errorf("put mapping: %w", err)
	}
	return nil
}

// Get returns the mapping of docType as JSON.
func (s *MappingService) Get(ctx context.Context, docType string) (_ json.RawMessage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.get", s.index, start, err) }()

	m, err := s.svc.Get(ctx, s.index, docType)
	if err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode mapping: %w", err)
	}
	return raw, nil
}

// Delete removes the mapping of docType and every document of that type.
// It returns the number of documents removed.
func (s *MappingService) Delete(ctx context.Context, docType string) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.delete", s.index, start, err) }()

	n, err := s.svc.Delete(ctx, s.index, docType)
	if err != nil {
		return 0, fmt.Errorf("delete mapping: %w", err)
	}
	return n, nil
}
