package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kailas-cloud/textdex/internal/db"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.WaitForReady(ctx, time.Second); err != nil {
		t.Fatal(err)
	}
	data := []byte(`{"name":"b"}`)
	if err := s.Save(ctx, "b", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'
	if err := s.Save(ctx, "a", []byte("{}")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"name":"b"}` {
		t.Errorf("Load = %s; caller mutation leaked into the store", got)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("List = %v", names)
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "b"); err != nil {
		t.Errorf("deleting a missing snapshot: %v", err)
	}
	if _, err := s.Load(ctx, "b"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("Load deleted = %v", err)
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Close()

	if err := s.Ping(ctx); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Ping = %v", err)
	}
	if err := s.Save(ctx, "a", nil); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Save = %v", err)
	}
	if _, err := s.List(ctx); !errors.Is(err, db.ErrClosed) {
		t.Errorf("List = %v", err)
	}
}
