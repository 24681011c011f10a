package document

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	domdoc "github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/logger"
	"github.com/kailas-cloud/textdex/internal/metrics"
)

// Service handles single-document writes and reads.
type Service struct {
	indices      IndexReader
	flusher      Flusher
	flushOnWrite bool
	newID        func() string
}

// New creates a document service.
func New(indices IndexReader, flusher Flusher) *Service {
	return &Service{indices: indices, flusher: flusher, newID: uuid.NewString}
}

// WithFlushOnWrite persists the index after every document write.
func (s *Service) WithFlushOnWrite(on bool) *Service {
	s.flushOnWrite = on
	return s
}

// Put indexes body under id, replacing any previous version.
// Returns true if the document was created, false if replaced.
func (s *Service) Put(ctx context.Context, indexName, typeName, id string, body json.RawMessage) (bool, error) {
	if err := domdoc.ValidateID(id); err != nil {
		return false, err
	}
	ix, err := s.indices.Get(indexName)
	if err != nil {
		return false, fmt.Errorf("get index: %w", err)
	}

	created, err := ix.PutDocument(typeName, id, body)
	if err != nil {
		return false, fmt.Errorf("index document: %w", err)
	}
	metrics.DocumentsIndexedTotal.WithLabelValues(indexName).Inc()

	logger.FromContext(ctx).Debug("document indexed",
		zap.String("index", indexName),
		zap.String("type", typeName),
		zap.String("id", id),
		zap.Bool("created", created),
	)
	if err := s.persist(ctx, indexName); err != nil {
		return false, err
	}
	return created, nil
}

// Create indexes body under a freshly generated id and returns it.
func (s *Service) Create(ctx context.Context, indexName, typeName string, body json.RawMessage) (string, error) {
	ix, err := s.indices.Get(indexName)
	if err != nil {
		return "", fmt.Errorf("get index: %w", err)
	}

	id := s.newID()
	if err := ix.InsertDocument(typeName, id, body); err != nil {
		return "", fmt.Errorf("index document: %w", err)
	}
	metrics.DocumentsIndexedTotal.WithLabelValues(indexName).Inc()

	logger.FromContext(ctx).Debug("document created",
		zap.String("index", indexName),
		zap.String("type", typeName),
		zap.String("id", id),
	)
	if err := s.persist(ctx, indexName); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the document stored under id. A document of another type is
// reported as missing.
func (s *Service) Get(_ context.Context, indexName, typeName, id string) (*domdoc.Document, error) {
	ix, err := s.indices.Get(indexName)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	doc, err := ix.Document(id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.Type() != typeName {
		return nil, fmt.Errorf("get document %s/%s/%s: %w", indexName, typeName, id, domain.ErrDocumentNotFound)
	}
	return doc, nil
}

// Delete removes the document stored under id if it has the given type.
func (s *Service) Delete(ctx context.Context, indexName, typeName, id string) error {
	if _, err := s.Get(ctx, indexName, typeName, id); err != nil {
		return err
	}
	ix, err := s.indices.Get(indexName)
	if err != nil {
		return fmt.Errorf("get index: %w", err)
	}
	if err := ix.DeleteDocument(id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.FromContext(ctx).Debug("document deleted",
		zap.String("index", indexName),
		zap.String("type", typeName),
		zap.String("id", id),
	)
	return s.persist(ctx, indexName)
}

func (s *Service) persist(ctx context.Context, indexName string) error {
	if !s.flushOnWrite {
		return nil
	}
	if err := s.flusher.Flush(ctx, indexName); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}
