package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/textdex/internal/domain"
	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
)

// --- Mocks ---

type mockIndices map[string]*domindex.Index

func (m mockIndices) Get(name string) (*domindex.Index, error) {
	ix, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrIndexNotFound)
	}
	return ix, nil
}

type mockFlusher struct {
	calls int
	err   error
}

func (m *mockFlusher) Flush(context.Context, string) error {
	m.calls++
	return m.err
}

func newTestService(t *testing.T) (*Service, *domindex.Index, *mockFlusher) {
	t.Helper()
	ix, err := domindex.New("articles", nil, domindex.Options{})
	if err != nil {
		t.Fatal(err)
	}
	f := &mockFlusher{}
	return New(mockIndices{"articles": ix}, f), ix, f
}

// --- Tests ---

func TestPutGet(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()

	m, err := svc.Put(ctx, "articles", "article", json.RawMessage(`{"properties": {"title": {"type": "string"}}}`))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := m.Field("title"); !ok {
		t.Error("title not mapped")
	}
	if f.calls != 0 {
		t.Errorf("flushed without flush_on_write: %d", f.calls)
	}

	got, err := svc.Get(ctx, "articles", "article")
	if err != nil || got != m {
		t.Errorf("Get = %v, %v", got, err)
	}
	if _, err := svc.Get(ctx, "articles", "missing"); !errors.Is(err, domain.ErrMappingNotFound) {
		t.Errorf("Get(missing) = %v", err)
	}
	if _, err := svc.Get(ctx, "missing", "article"); !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("Get on missing index = %v", err)
	}
}

func TestPut_Invalid(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Put(context.Background(), "articles", "article", json.RawMessage(`{"title": {"type": "string", "analyzer": "nope"}}`))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDelete(t *testing.T) {
	svc, ix, f := newTestService(t)
	ctx := context.Background()
	svc.WithFlushOnWrite(true)

	if _, err := svc.Put(ctx, "articles", "article", json.RawMessage(`{"title": {"type": "string"}}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.PutDocument("article", "1", json.RawMessage(`{"title": "x"}`)); err != nil {
		t.Fatal(err)
	}

	removed, err := svc.Delete(ctx, "articles", "article")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d", removed)
	}
	if f.calls != 2 {
		t.Errorf("flush calls = %d, want 2", f.calls)
	}
	if _, err := svc.Delete(ctx, "articles", "article"); !errors.Is(err, domain.ErrMappingNotFound) {
		t.Errorf("second Delete = %v", err)
	}
}

func TestPut_FlushError(t *testing.T) {
	svc, _, f := newTestService(t)
	svc.WithFlushOnWrite(true)
	f.err = errors.New("disk full")

	if _, err := svc.Put(context.Background(), "articles", "a", json.RawMessage(`{}`)); !errors.Is(err, f.err) {
		t.Errorf("Put = %v", err)
	}
}
