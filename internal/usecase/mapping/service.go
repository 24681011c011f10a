package mapping

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	dommapping "github.com/kailas-cloud/textdex/internal/domain/mapping"
	"github.com/kailas-cloud/textdex/internal/logger"
)

// Service manages the per-type mappings of an index.
type Service struct {
	indices      IndexReader
	flusher      Flusher
	flushOnWrite bool
}

// New creates a mapping service.
func New(indices IndexReader, flusher Flusher) *Service {
	return &Service{indices: indices, flusher: flusher}
}

// WithFlushOnWrite persists the index after every mapping change.
func (s *Service) WithFlushOnWrite(on bool) *Service {
	s.flushOnWrite = on
	return s
}

// Put installs or replaces the mapping of a type. Stored documents keep the
// values they were converted with.
func (s *Service) Put(ctx context.Context, indexName, typeName string, raw json.RawMessage) (*dommapping.Mapping, error) {
	ctx = logger.WithIndex(ctx, indexName)
	ix, err := s.indices.Get(indexName)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	m, err := ix.PutMapping(typeName, raw)
	if err != nil {
		return nil, fmt.Errorf("put mapping: %w", err)
	}

	logger.FromContext(ctx).Info("mapping updated",
		zap.String("type", typeName),
		zap.Int("fields", len(m.Fields())),
	)
	if err := s.persist(ctx, indexName); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns the mapping of a type.
func (s *Service) Get(_ context.Context, indexName, typeName string) (*dommapping.Mapping, error) {
	ix, err := s.indices.Get(indexName)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	m, err := ix.Mapping(typeName)
	if err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	return m, nil
}

// Delete removes a mapping and every document of that type.
func (s *Service) Delete(ctx context.Context, indexName, typeName string) (int, error) {
	ctx = logger.WithIndex(ctx, indexName)
	ix, err := s.indices.Get(indexName)
	if err != nil {
		return 0, fmt.Errorf("get index: %w", err)
	}
	removed, err := ix.DeleteMapping(typeName)
	if err != nil {
		return 0, fmt.Errorf("delete mapping: %w", err)
	}

	logger.FromContext(ctx).Info("mapping deleted",
		zap.String("type", typeName),
		zap.Int("documents_removed", removed),
	)
	if err := s.persist(ctx, indexName); err != nil {
		return removed, err
	}
	return removed, nil
}

func (s *Service) persist(ctx context.Context, indexName string) error {
	if !s.flushOnWrite {
		return nil
	}
	if err := s.flusher.Flush(ctx, indexName); err != nil {
		logger.FromContext(ctx).Error("persist index failed", zap.Error(err))
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}
