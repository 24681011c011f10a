package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
	"github.com/kailas-cloud/textdex/internal/domain/value"
	"github.com/kailas-cloud/textdex/internal/logger"
)

// Service manages index lifecycle and aliases.
type Service struct {
	registry     Registry
	flushOnWrite bool
}

// New creates an index service.
func New(registry Registry) *Service {
	return &Service{registry: registry}
}

// WithFlushOnWrite persists the index after every alias change.
func (s *Service) WithFlushOnWrite(on bool) *Service {
	s.flushOnWrite = on
	return s
}

// Create makes a new index from an optional body of the form
// {"settings": {...}, "mappings": {"<type>": {...}}}. The index is persisted
// right away; if any mapping is invalid nothing is created.
func (s *Service) Create(ctx context.Context, name string, body json.RawMessage) (*domindex.Index, error) {
	settings, mappings, err := splitCreateBody(body)
	if err != nil {
		return nil, err
	}

	ix, err := s.registry.Create(name, settings)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	for _, m := range mappings {
		if _, err := ix.PutMapping(m.Name, m.Raw); err != nil {
			rollbackErr := s.registry.Delete(ctx, name)
			return nil, errors.Join(fmt.Errorf("mapping %s: %w", m.Name, err), rollbackErr)
		}
	}

	if err := s.registry.Flush(ctx, name); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	logger.FromContext(ctx).Info("index created",
		zap.String("index", name),
		zap.Int("mappings", len(mappings)),
	)
	return ix, nil
}

func splitCreateBody(body json.RawMessage) (json.RawMessage, []value.Member, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil, nil
	}
	members, err := value.ObjectFields(body)
	if err != nil {
		return nil, nil, domain.NewParseError("", "index body: %v", err)
	}

	var settings json.RawMessage
	var mappings []value.Member
	for _, m := range members {
		switch m.Name {
		case "settings":
			settings = m.Raw
		case "mappings":
			mappings, err = value.ObjectFields(m.Raw)
			if err != nil {
				return nil, nil, domain.NewParseError("mappings", "%v", err)
			}
		default:
			return nil, nil, domain.NewParseError("", "unknown index body key %q", m.Name)
		}
	}
	return settings, mappings, nil
}

// Get returns an index by exact name.
func (s *Service) Get(_ context.Context, name string) (*domindex.Index, error) {
	ix, err := s.registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	return ix, nil
}

// Delete drops an index and its snapshot.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.registry.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	logger.FromContext(ctx).Info("index deleted", zap.String("index", name))
	return nil
}

// Refresh persists the current state of an index.
func (s *Service) Refresh(ctx context.Context, name string) error {
	if err := s.registry.Flush(ctx, name); err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}
	return nil
}

// PutAlias tags an index with alias.
func (s *Service) PutAlias(ctx context.Context, name, alias string) error {
	if err := s.registry.AddAlias(name, alias); err != nil {
		return fmt.Errorf("put alias: %w", err)
	}
	logger.FromContext(ctx).Debug("alias added", zap.String("index", name), zap.String("alias", alias))
	return s.persist(ctx, name)
}

// GetAlias confirms that an index carries alias.
func (s *Service) GetAlias(_ context.Context, name, alias string) error {
	ix, err := s.registry.Get(name)
	if err != nil {
		return fmt.Errorf("get alias: %w", err)
	}
	if !ix.HasAlias(alias) {
		return fmt.Errorf("%s/%s: %w", name, alias, domain.ErrAliasNotFound)
	}
	return nil
}

// DeleteAlias removes alias from an index.
func (s *Service) DeleteAlias(ctx context.Context, name, alias string) error {
	ix, err := s.registry.Get(name)
	if err != nil {
		return fmt.Errorf("delete alias: %w", err)
	}
	if err := ix.RemoveAlias(alias); err != nil {
		return fmt.Errorf("delete alias: %w", err)
	}
	logger.FromContext(ctx).Debug("alias removed", zap.String("index", name), zap.String("alias", alias))
	return s.persist(ctx, name)
}

// FindAlias returns every index carrying alias.
func (s *Service) FindAlias(_ context.Context, alias string) ([]*domindex.Index, error) {
	ixs, err := s.registry.FindAlias(alias)
	if err != nil {
		return nil, fmt.Errorf("find alias: %w", err)
	}
	return ixs, nil
}

func (s *Service) persist(ctx context.Context, name string) error {
	if !s.flushOnWrite {
		return nil
	}
	if err := s.registry.Flush(ctx, name); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}
