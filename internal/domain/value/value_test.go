package value

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/textdex/internal/domain"
)

func TestFromJSON_Scalars(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{`"hello"`, NewString("hello")},
		{`true`, NewBoolean(true)},
		{`null`, NewNull()},
		{`42`, NewInt64(42)},
		{`-7`, NewInt64(-7)},
		{`18446744073709551615`, NewUInt64(math.MaxUint64)},
		{`3.5`, NewFloat64(3.5)},
		{`1e3`, NewFloat64(1000)},
	}
	for _, tt := range tests {
		got, err := FromJSON("f", json.RawMessage(tt.raw), Options{})
		if err != nil {
			t.Errorf("FromJSON(%s): %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("FromJSON(%s) = %s (%s), want %s (%s)", tt.raw, got, got.Kind(), tt.want, tt.want.Kind())
		}
	}
}

func TestFromJSON_ArraysAndObjects(t *testing.T) {
	for _, raw := range []string{`[1,2]`, `{"a":1}`, ` [ ] `} {
		_, err := FromJSON("tags", json.RawMessage(raw), Options{})
		if !errors.Is(err, domain.ErrConversion) {
			t.Errorf("FromJSON(%s) error = %v, want ErrConversion", raw, err)
		}
		var ce *domain.ConversionError
		if !errors.As(err, &ce) || ce.Field != "tags" {
			t.Errorf("FromJSON(%s) error = %#v, want ConversionError for tags", raw, err)
		}

		v, err := FromJSON("tags", json.RawMessage(raw), Options{Lenient: true})
		if err != nil || !v.IsNull() {
			t.Errorf("lenient FromJSON(%s) = %s, %v; want null", raw, v, err)
		}
	}
}

func TestMatchTerm(t *testing.T) {
	tv := NewTokenVector([]string{"quick", "brown", "fox"})
	tests := []struct {
		name   string
		v      Value
		term   string
		prefix bool
		want   bool
	}{
		{"vector exact", tv, "brown", false, true},
		{"vector exact miss", tv, "bro", false, false},
		{"vector prefix", tv, "bro", true, true},
		{"string whole", NewString("New York"), "New York", false, true},
		{"string not tokenized", NewString("New York"), "York", false, false},
		{"string prefix", NewString("New York"), "New", true, true},
		{"int", NewInt64(42), "42", false, true},
		{"uint", NewUInt64(7), "7", false, true},
		{"bool", NewBoolean(false), "false", false, true},
		{"float", NewFloat64(2.5), "2.5", false, true},
		{"null", NewNull(), "", false, false},
	}
	for _, tt := range tests {
		if got := tt.v.MatchTerm(tt.term, tt.prefix); got != tt.want {
			t.Errorf("%s: MatchTerm(%q, %v) = %v, want %v", tt.name, tt.term, tt.prefix, got, tt.want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Value{"n": NewInt64(3), "s": NewString("x"), "z": NewNull()})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(b), `{"n":3,"s":"x","z":null}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	if _, err := json.Marshal(NewTokenVector([]string{"a"})); err == nil {
		t.Error("token vector should not marshal")
	}
}

func TestTokenVector_Copies(t *testing.T) {
	src := []string{"a", "b"}
	v := NewTokenVector(src)
	src[0] = "changed"
	got, _ := v.Terms()
	if got[0] != "a" {
		t.Errorf("NewTokenVector aliased input: %v", got)
	}
	got[1] = "changed"
	again, _ := v.Terms()
	if again[1] != "b" {
		t.Errorf("Terms aliased storage: %v", again)
	}
}

func TestParseKind(t *testing.T) {
	for k := Null; k <= Float64; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("blob"); ok {
		t.Error("ParseKind(blob) accepted")
	}
}
