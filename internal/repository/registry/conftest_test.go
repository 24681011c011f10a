package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/textdex/internal/db/memory"
	"github.com/kailas-cloud/textdex/internal/domain/index"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	saveFn   func(ctx context.Context, name string, data []byte) error
	loadFn   func(ctx context.Context, name string) ([]byte, error)
	deleteFn func(ctx context.Context, name string) error
	listFn   func(ctx context.Context) ([]string, error)
}

func (m *mockStore) Save(ctx context.Context, name string, data []byte) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, name, data)
	}
	return nil
}

func (m *mockStore) Load(ctx context.Context, name string) ([]byte, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, name)
	}
	return nil, nil
}

func (m *mockStore) Delete(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

func (m *mockStore) List(ctx context.Context) ([]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func newTestRegistry(t *testing.T) (*Registry, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	return New(s, index.Options{}, nil), s
}

func createWithDocs(t *testing.T, r *Registry, name string, docs ...string) *index.Index {
	t.Helper()
	ix, err := r.Create(name, nil)
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	if _, err := ix.PutMapping("doc", json.RawMessage(`{"title": {"type": "string"}}`)); err != nil {
		t.Fatal(err)
	}
	for i, title := range docs {
		body, _ := json.Marshal(map[string]string{"title": title})
		if _, err := ix.PutDocument("doc", string(rune('a'+i)), body); err != nil {
			t.Fatal(err)
		}
	}
	return ix
}
