package query

import (
	"math"
	"reflect"
	"testing"

	"github.com/kailas-cloud/textdex/internal/domain/value"
)

// fakeDoc is a FieldSource over token vectors and scalars.
type fakeDoc map[string]value.Value

func (d fakeDoc) Field(name string) (value.Value, bool) {
	v, ok := d[name]
	return v, ok
}

func tokens(terms ...string) value.Value { return value.NewTokenVector(terms) }

// scored is a leaf with a fixed outcome.
type scored struct {
	score float64
	match bool
}

func (s scored) Score(FieldSource) (float64, bool) { return s.score, s.match }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMatchTerm(t *testing.T) {
	doc := fakeDoc{
		"title": tokens("quick", "brown", "fox"),
		"code":  value.NewString("AB-12"),
		"views": value.NewInt64(10),
	}
	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"exact hit", Term("title", "fox"), true},
		{"exact miss", Term("title", "fo"), false},
		{"prefix hit", PrefixTerm("title", "bro"), true},
		{"missing field", Term("body", "fox"), false},
		{"raw string", Term("code", "AB-12"), true},
		{"number", Term("views", "10"), true},
	}
	for _, tt := range tests {
		s, ok := tt.q.Score(doc)
		if ok != tt.want {
			t.Errorf("%s: match = %v, want %v", tt.name, ok, tt.want)
		}
		if ok && s != 1 {
			t.Errorf("%s: score = %v, want 1", tt.name, s)
		}
	}

	boosted := MatchTerm{Field: "title", Term: "fox", Boost: 2.5}
	if s, _ := boosted.Score(doc); s != 2.5 {
		t.Errorf("boosted score = %v, want 2.5", s)
	}
}

func TestMatchAllNone(t *testing.T) {
	if s, ok := (MatchAll{Boost: 1}).Score(fakeDoc{}); !ok || s != 1 {
		t.Errorf("MatchAll = %v, %v", s, ok)
	}
	if _, ok := (MatchNone{}).Score(fakeDoc{}); ok {
		t.Error("MatchNone matched")
	}
}

func TestBool_MinimumShouldMatch(t *testing.T) {
	should := []Query{scored{1, true}, scored{1, true}, scored{1, false}}

	if _, ok := (Bool{Should: should, MinimumShouldMatch: 2, Boost: 1}).Score(nil); !ok {
		t.Error("msm=2 with two matching should clauses did not match")
	}
	if _, ok := (Bool{Should: should, MinimumShouldMatch: 3, Boost: 1}).Score(nil); ok {
		t.Error("msm=3 with two matching should clauses matched")
	}
}

func TestBool_ShouldOptionalWithMust(t *testing.T) {
	q := Bool{
		Must:               []Query{scored{2, true}},
		Should:             []Query{scored{5, false}, scored{0.5, true}},
		MinimumShouldMatch: 2,
		Boost:              1,
	}
	s, ok := q.Score(nil)
	if !ok {
		t.Fatal("should clauses are optional when must is set")
	}
	if !almostEqual(s, 2.5) {
		t.Errorf("score = %v, want 2.5", s)
	}

	q = Bool{Filter: []Query{scored{9, true}}, Should: []Query{scored{1, false}}, MinimumShouldMatch: 1, Boost: 1}
	s, ok = q.Score(nil)
	if !ok || s != 0 {
		t.Errorf("filter-only bool = %v, %v; want match with score 0", s, ok)
	}
}

func TestBool_Clauses(t *testing.T) {
	tests := []struct {
		name      string
		q         Bool
		wantMatch bool
		wantScore float64
	}{
		{"must all", Bool{Must: []Query{scored{1, true}, scored{2, true}}, Boost: 1}, true, 3},
		{"must one fails", Bool{Must: []Query{scored{1, true}, scored{2, false}}, Boost: 1}, false, 0},
		{"filter fails", Bool{Filter: []Query{scored{1, false}}, Must: []Query{scored{1, true}}, Boost: 1}, false, 0},
		{"must_not hits", Bool{Must: []Query{scored{1, true}}, MustNot: []Query{scored{1, true}}, Boost: 1}, false, 0},
		{"must_not misses", Bool{Must: []Query{scored{1, true}}, MustNot: []Query{scored{1, false}}, Boost: 1}, true, 1},
		{"boost", Bool{Must: []Query{scored{1, true}}, Should: []Query{scored{2, true}}, Boost: 2}, true, 6},
		{"empty bool", Bool{Boost: 1}, true, 0},
	}
	for _, tt := range tests {
		s, ok := tt.q.Score(nil)
		if ok != tt.wantMatch {
			t.Errorf("%s: match = %v, want %v", tt.name, ok, tt.wantMatch)
			continue
		}
		if ok && !almostEqual(s, tt.wantScore) {
			t.Errorf("%s: score = %v, want %v", tt.name, s, tt.wantScore)
		}
	}
}

func TestDisjunctionMax_TakesMax(t *testing.T) {
	q := DisjunctionMax{Queries: []Query{scored{0.5, true}, scored{0.9, true}, scored{5, false}}, Boost: 1}
	s, ok := q.Score(nil)
	if !ok {
		t.Fatal("dis_max did not match")
	}
	if !almostEqual(s, 0.9) {
		t.Errorf("score = %v, want 0.9", s)
	}

	if _, ok := (DisjunctionMax{Queries: []Query{scored{1, false}}, Boost: 1}).Score(nil); ok {
		t.Error("dis_max with no matching child matched")
	}
}

func TestBoostScore(t *testing.T) {
	q := BoostScore{Query: scored{2, true}, Mul: 3, Add: 0.5}
	if s, ok := q.Score(nil); !ok || !almostEqual(s, 6.5) {
		t.Errorf("BoostScore = %v, %v; want 6.5", s, ok)
	}
	if _, ok := (BoostScore{Query: scored{2, false}, Mul: 3}).Score(nil); ok {
		t.Error("BoostScore changed matching")
	}
}

func TestBuilders(t *testing.T) {
	q1 := Term("a", "x")
	q2 := Term("b", "y")

	builders := map[string]func(...Query) Query{"And": And, "Or": Or, "DisMax": DisMax}
	for name, build := range builders {
		if _, ok := build().(MatchNone); !ok {
			t.Errorf("%s() = %#v, want MatchNone", name, build())
		}
		if got := build(q1); !reflect.DeepEqual(got, q1) {
			t.Errorf("%s(q) = %#v, want q", name, got)
		}
	}

	if got, want := And(q1, q2), (Bool{Must: []Query{q1, q2}, Boost: 1}); !reflect.DeepEqual(got, want) {
		t.Errorf("And(q1, q2) = %#v", got)
	}
	if got, want := Or(q1, q2), (Bool{Should: []Query{q1, q2}, MinimumShouldMatch: 1, Boost: 1}); !reflect.DeepEqual(got, want) {
		t.Errorf("Or(q1, q2) = %#v", got)
	}
	if got, want := DisMax(q1, q2), (DisjunctionMax{Queries: []Query{q1, q2}, Boost: 1}); !reflect.DeepEqual(got, want) {
		t.Errorf("DisMax(q1, q2) = %#v", got)
	}

	if got := Score(q1, 1, 0); !reflect.DeepEqual(got, q1) {
		t.Errorf("Score(q, 1, 0) = %#v, want q", got)
	}
	if got, want := Score(q1, 2, 0), (BoostScore{Query: q1, Mul: 2}); !reflect.DeepEqual(got, want) {
		t.Errorf("Score(q, 2, 0) = %#v", got)
	}
}

func TestOr_MatchesAny(t *testing.T) {
	doc := fakeDoc{"tag": tokens("go")}
	if !Matches(Or(Term("tag", "rust"), Term("tag", "go")), doc) {
		t.Error("Or did not match on second clause")
	}
	if Matches(And(Term("tag", "rust"), Term("tag", "go")), doc) {
		t.Error("And matched with one failing clause")
	}
}
