package textdex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/textdex/internal/domain/batch"
)

// DocumentService manages the documents of one type within one index.
type DocumentService struct {
	index   string
	docType string
	svc     documentUseCase
	obs     *observer
}

// Put indexes source under id, replacing any previous version.
// Returns true if the document was created.
func (s *DocumentService) Put(ctx context.Context, id string, source json.RawMessage) (_ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.put", s.index, start, err) }()

	created, err := s.svc.Put(ctx, s.index, s.docType, id, source)
	if err != nil {
		return false, fmt.Errorf("put document: %w", err)
	}
	return created, nil
}

// Create indexes source under a generated id and returns it.
func (s *DocumentService) Create(ctx context.Context, source json.RawMessage) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.create", s.index, start, err) }()

	id, err := s.svc.Create(ctx, s.index, s.docType, source)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return id, nil
}

// Get returns the document stored under id.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", s.index, start, err) }()

	d, err := s.svc.Get(ctx, s.index, s.docType, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return Document{Index: s.index, Type: d.Type(), ID: d.ID(), Source: d.Source()}, nil
}

// Delete removes the document stored under id.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", s.index, start, err) }()

	if err = s.svc.Delete(ctx, s.index, s.docType, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Bulk applies a newline-delimited bulk body (action line, then source line
// for index and create). Item failures are reported per result; the error is
// set for a malformed body or when touched indices could not be persisted.
func (c *Client) Bulk(ctx context.Context, body []byte) (_ []BulkResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("bulk", "", start, err) }()

	results, err := c.bulkSvc.Execute(ctx, body)
	out := fromBatchResults(results)
	if err != nil {
		return out, fmt.Errorf("bulk: %w", err)
	}
	return out, nil
}

func fromBatchResults(results []dombatch.Result) []BulkResult {
	if results == nil {
		return nil
	}
	out := make([]BulkResult, len(results))
	for i, r := range results {
		t := r.Target()
		out[i] = BulkResult{
			Action: string(r.Action()),
			Index:  t.Index,
			Type:   t.Type,
			ID:     t.ID,
			Result: string(r.Outcome()),
			Err:    r.Err(),
		}
	}
	return out
}
