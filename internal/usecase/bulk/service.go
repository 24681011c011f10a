package bulk

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	dombatch "github.com/kailas-cloud/textdex/internal/domain/batch"
	"github.com/kailas-cloud/textdex/internal/logger"
	"github.com/kailas-cloud/textdex/internal/metrics"
)

// MaxItems is the maximum number of operations per bulk request.
const MaxItems = 10000

// Service executes NDJSON bulk requests with per-item error reporting.
type Service struct {
	registry Registry
	maxItems int
	newID    func() string
}

// New creates a bulk service.
func New(registry Registry) *Service {
	return &Service{registry: registry, maxItems: MaxItems, newID: uuid.NewString}
}

// WithMaxItems configures the maximum bulk size.
func (s *Service) WithMaxItems(n int) *Service {
	if n > 0 {
		s.maxItems = n
	}
	return s
}

// Execute parses body and applies every item in order. A malformed body fails
// the whole request; item failures are reported per item. Every index that
// received a successful write is persisted afterwards and persistence
// failures come back aggregated.
func (s *Service) Execute(ctx context.Context, body []byte) ([]dombatch.Result, error) {
	items, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if len(items) > s.maxItems {
		return nil, fmt.Errorf("bulk size %d exceeds %d: %w", len(items), s.maxItems, domain.ErrInvalidSchema)
	}

	results := make([]dombatch.Result, len(items))
	var touched []string
	seen := make(map[string]struct{})

	for i, item := range items {
		results[i] = s.apply(item)
		if results[i].Status() != dombatch.StatusOK {
			continue
		}
		name := item.Target.Index
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			touched = append(touched, name)
		}
	}

	var flushErr *multierror.Error
	for _, name := range touched {
		if err := s.registry.Flush(ctx, name); err != nil {
			flushErr = multierror.Append(flushErr, fmt.Errorf("persist index %s: %w", name, err))
		}
	}

	log := logger.FromContext(ctx)
	log.Debug("bulk executed",
		zap.Int("items", len(items)),
		zap.Bool("errors", dombatch.HasErrors(results)),
		zap.Strings("indices", touched),
	)
	if err := flushErr.ErrorOrNil(); err != nil {
		log.Error("bulk persist failed", zap.Error(err))
		return results, err
	}
	return results, nil
}

func (s *Service) apply(item Item) dombatch.Result {
	target := item.Target
	ix, err := s.registry.Get(target.Index)
	if err != nil {
		return dombatch.NewError(item.Action, target, err)
	}

	switch item.Action {
	case dombatch.ActionIndex:
		if target.ID == "" {
			target.ID = s.newID()
		}
		created, err := ix.PutDocument(target.Type, target.ID, item.Source)
		if err != nil {
			return dombatch.NewError(item.Action, target, err)
		}
		metrics.DocumentsIndexedTotal.WithLabelValues(target.Index).Inc()
		if created {
			return dombatch.NewOK(item.Action, target, dombatch.OutcomeCreated)
		}
		return dombatch.NewOK(item.Action, target, dombatch.OutcomeUpdated)

	case dombatch.ActionCreate:
		if target.ID == "" {
			target.ID = s.newID()
		}
		if err := ix.InsertDocument(target.Type, target.ID, item.Source); err != nil {
			return dombatch.NewError(item.Action, target, err)
		}
		metrics.DocumentsIndexedTotal.WithLabelValues(target.Index).Inc()
		return dombatch.NewOK(item.Action, target, dombatch.OutcomeCreated)

	case dombatch.ActionDelete:
		doc, err := ix.Document(target.ID)
		if err == nil && doc.Type() != target.Type {
			err = fmt.Errorf("%s/%s/%s: %w", target.Index, target.Type, target.ID, domain.ErrDocumentNotFound)
		}
		if err == nil {
			err = ix.DeleteDocument(target.ID)
		}
		if err != nil {
			return dombatch.NewError(item.Action, target, err)
		}
		return dombatch.NewOK(item.Action, target, dombatch.OutcomeDeleted)
	}

	return dombatch.NewError(item.Action, target, domain.NewParseError("", "unknown bulk action %q", item.Action))
}
