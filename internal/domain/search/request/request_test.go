package request

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/textdex/internal/domain"
)

func intPtr(n int) *int { return &n }

func TestNew_Size(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		param *int
		want  int
	}{
		{"defaults", ``, nil, DefaultSize},
		{"body without size", `{"query": {"match_all": {}}}`, nil, DefaultSize},
		{"body size", `{"size": 3}`, nil, 3},
		{"param wins", `{"size": 3}`, intPtr(5), 5},
		{"zero", ``, intPtr(0), 0},
		{"max", ``, intPtr(MaxSize), MaxSize},
	}
	for _, tt := range tests {
		r, err := New([]byte(tt.body), tt.param)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if r.Size() != tt.want {
			t.Errorf("%s: Size() = %d, want %d", tt.name, r.Size(), tt.want)
		}
	}
}

func TestNew_KeepsBody(t *testing.T) {
	r, err := New([]byte("  {\"query\": {}}\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(r.Body()) != `{"query": {}}` {
		t.Errorf("Body() = %q", r.Body())
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New([]byte(`{"size": -1}`), nil); !errors.Is(err, domain.ErrQuery) {
		t.Errorf("negative size: %v", err)
	}
	if _, err := New(nil, intPtr(MaxSize+1)); !errors.Is(err, domain.ErrQuery) {
		t.Errorf("too large: %v", err)
	}
	if _, err := New([]byte(`{"size": "ten"}`), nil); !errors.Is(err, domain.ErrParse) {
		t.Errorf("bad size type: %v", err)
	}
	if _, err := New([]byte(`{`), nil); !errors.Is(err, domain.ErrParse) {
		t.Errorf("malformed body: %v", err)
	}
}
