package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/textdex/internal/domain"
	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
	"github.com/kailas-cloud/textdex/internal/metrics"
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
	for _, typ := range []string{"article", "comment"} {
		if _, err := ix.PutMapping(typ, json.RawMessage(`{"title": {"type": "string"}}`)); err != nil {
			t.Fatal(err)
		}
	}
	f := &mockFlusher{}
	return New(mockIndices{"articles": ix}, f), ix, f
}

// --- Tests ---

func TestPut(t *testing.T) {
	svc, ix, f := newTestService(t)
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.DocumentsIndexedTotal.WithLabelValues("articles"))

	created, err := svc.Put(ctx, "articles", "article", "1", json.RawMessage(`{"title": "Quick Fox"}`))
	if err != nil || !created {
		t.Fatalf("Put = %v, %v", created, err)
	}
	created, err = svc.Put(ctx, "articles", "article", "1", json.RawMessage(`{"title": "Lazy Dog"}`))
	if err != nil || created {
		t.Fatalf("replace = %v, %v", created, err)
	}
	if ix.DocCount() != 1 {
		t.Errorf("DocCount = %d", ix.DocCount())
	}
	if f.calls != 0 {
		t.Errorf("flushed without flush_on_write")
	}
	after := testutil.ToFloat64(metrics.DocumentsIndexedTotal.WithLabelValues("articles"))
	if after-before != 2 {
		t.Errorf("documents_indexed_total grew by %f, want 2", after-before)
	}
}

func TestPut_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		index string
		typ   string
		id    string
		body  string
		want  error
	}{
		{"missing index", "nope", "article", "1", `{}`, domain.ErrIndexNotFound},
		{"missing type", "articles", "nope", "1", `{}`, domain.ErrMappingNotFound},
		{"empty id", "articles", "article", "", `{}`, domain.ErrInvalidName},
		{"long id", "articles", "article", strings.Repeat("x", 513), `{}`, domain.ErrInvalidName},
		{"bad json", "articles", "article", "1", `{`, domain.ErrParse},
		{"_all in body", "articles", "article", "1", `{"_all": "x"}`, domain.ErrConversion},
	}
	for _, tt := range tests {
		_, err := svc.Put(ctx, tt.index, tt.typ, tt.id, json.RawMessage(tt.body))
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestCreate_GeneratesID(t *testing.T) {
	svc, ix, _ := newTestService(t)
	svc.newID = func() string { return "generated" }

	id, err := svc.Create(context.Background(), "articles", "article", json.RawMessage(`{"title": "x"}`))
	if err != nil {
		t.Fatal(err)
	}
	if id != "generated" {
		t.Errorf("id = %q", id)
	}
	if _, err := ix.Document("generated"); err != nil {
		t.Errorf("document not stored: %v", err)
	}
	if _, err := svc.Create(context.Background(), "articles", "article", json.RawMessage(`{}`)); !errors.Is(err, domain.ErrDocumentExists) {
		t.Errorf("colliding id = %v", err)
	}
}

func TestCreate_DefaultIDsAreUnique(t *testing.T) {
	svc, _, _ := newTestService(t)
	a, err := svc.Create(context.Background(), "articles", "article", json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Create(context.Background(), "articles", "article", json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if a == b || a == "" {
		t.Errorf("ids = %q, %q", a, b)
	}
}

func TestGet_TypeMismatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Put(ctx, "articles", "article", "1", json.RawMessage(`{"title": "x"}`)); err != nil {
		t.Fatal(err)
	}

	doc, err := svc.Get(ctx, "articles", "article", "1")
	if err != nil || doc.ID() != "1" {
		t.Fatalf("Get = %v, %v", doc, err)
	}
	if _, err := svc.Get(ctx, "articles", "comment", "1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("Get with wrong type = %v", err)
	}
	if err := svc.Delete(ctx, "articles", "comment", "1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("Delete with wrong type = %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, ix, f := newTestService(t)
	ctx := context.Background()
	svc.WithFlushOnWrite(true)

	if _, err := svc.Put(ctx, "articles", "article", "1", json.RawMessage(`{"title": "x"}`)); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "articles", "article", "1"); err != nil {
		t.Fatal(err)
	}
	if ix.DocCount() != 0 {
		t.Errorf("DocCount = %d", ix.DocCount())
	}
	if f.calls != 2 {
		t.Errorf("flush calls = %d, want 2", f.calls)
	}
	if err := svc.Delete(ctx, "articles", "article", "1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("second Delete = %v", err)
	}
}
