package analysis

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/textdex/internal/domain"
)

func terms(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Term
	}
	return out
}

func TestStandardTokenizer(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, world!", []string{"Hello", "world"}},
		{"  the quick  brown fox ", []string{"the", "quick", "brown", "fox"}},
		{"...!!! ---", nil},
		{"", nil},
		{"café au lait", []string{"café", "au", "lait"}},
		{"version 42 released", []string{"version", "42", "released"}},
	}

	for _, tt := range tests {
		tokens := Collect(StandardTokenizer{}.Tokenize(tt.in))
		if got := terms(tokens); !reflect.DeepEqual(got, tt.want) && (len(got) != 0 || len(tt.want) != 0) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i, tok := range tokens {
			if tok.Position != i+1 {
				t.Errorf("Tokenize(%q)[%d].Position = %d, want %d", tt.in, i, tok.Position, i+1)
			}
		}
	}
}

func TestStandardTokenizer_MatchesWordSplitter(t *testing.T) {
	in := "alpha beta gamma delta"
	got := CollectTerms(StandardTokenizer{}.Tokenize(in))
	if want := strings.Fields(in); !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestTokenStream_SinglePass(t *testing.T) {
	ts := StandardTokenizer{}.Tokenize("one two")
	if got := len(Collect(ts)); got != 2 {
		t.Fatalf("first drain = %d tokens, want 2", got)
	}
	if _, ok := ts.Next(); ok {
		t.Error("exhausted stream returned another token")
	}
}

func TestLowercaseTokenizer(t *testing.T) {
	got := CollectTerms(LowercaseTokenizer{}.Tokenize("Hello WORLD"))
	if want := []string{"hello", "world"}; !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestNGramTokenizer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		cfg  NGramConfig
		want []string
	}{
		{"neither", "cat", NGramConfig{MinSize: 2, MaxSize: 3, Edge: EdgeNeither}, []string{"ca", "at", "cat"}},
		{"left", "cats", NGramConfig{MinSize: 1, MaxSize: 3, Edge: EdgeLeft}, []string{"c", "ca", "cat"}},
		{"right", "cats", NGramConfig{MinSize: 1, MaxSize: 3, Edge: EdgeRight}, []string{"s", "ts", "ats"}},
		{"max beyond input", "ab", NGramConfig{MinSize: 1, MaxSize: 5, Edge: EdgeNeither}, []string{"a", "b", "ab"}},
		{"input too short", "a", NGramConfig{MinSize: 2, MaxSize: 3, Edge: EdgeNeither}, nil},
		{"runes not bytes", "çé", NGramConfig{MinSize: 1, MaxSize: 1, Edge: EdgeNeither}, []string{"ç", "é"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := NewNGramTokenizer(tt.cfg)
			if err != nil {
				t.Fatalf("NewNGramTokenizer: %v", err)
			}
			tokens := Collect(tok.Tokenize(tt.in))
			if got := terms(tokens); len(got) != len(tt.want) || (len(got) > 0 && !reflect.DeepEqual(got, tt.want)) {
				t.Fatalf("terms = %v, want %v", got, tt.want)
			}
			for i, tk := range tokens {
				if tk.Position != i+1 {
					t.Errorf("token %d position = %d, want %d", i, tk.Position, i+1)
				}
			}
		})
	}
}

func TestNGramConfig_Validate(t *testing.T) {
	bad := []NGramConfig{
		{MinSize: 0, MaxSize: 2, Edge: EdgeNeither},
		{MinSize: 3, MaxSize: 2, Edge: EdgeLeft},
		{MinSize: 1, MaxSize: 2, Edge: "middle"},
	}
	for _, cfg := range bad {
		if _, err := NewNGramFilter(cfg); !errors.Is(err, domain.ErrInvalidAnalyzer) {
			t.Errorf("NewNGramFilter(%+v) error = %v, want ErrInvalidAnalyzer", cfg, err)
		}
	}
}

func TestLowercaseFilter(t *testing.T) {
	in := []Token{{"Hello", 1}, {"WORLD", 2}, {"Ünïcode", 3}, {"42", 4}}
	out := Collect(LowercaseFilter{}.Apply(NewSliceStream(in...)))
	if len(out) != len(in) {
		t.Fatalf("token count = %d, want %d", len(out), len(in))
	}
	want := []string{"hello", "world", "ünïcode", "42"}
	for i := range out {
		if out[i].Term != want[i] {
			t.Errorf("term[%d] = %q, want %q", i, out[i].Term, want[i])
		}
		if out[i].Position != in[i].Position {
			t.Errorf("position[%d] = %d, want %d", i, out[i].Position, in[i].Position)
		}
	}
}

func TestNGramFilter_SharesPosition(t *testing.T) {
	f, err := NewNGramFilter(NGramConfig{MinSize: 2, MaxSize: 3, Edge: EdgeNeither})
	if err != nil {
		t.Fatal(err)
	}
	out := Collect(f.Apply(NewSliceStream(Token{"cat", 1}, Token{"a", 2}, Token{"dog", 3})))

	want := []Token{{"ca", 1}, {"at", 1}, {"cat", 1}, {"do", 3}, {"og", 3}, {"dog", 3}}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("tokens = %v, want %v", out, want)
	}
}

func TestNGramFilter_Edge(t *testing.T) {
	f, _ := NewNGramFilter(NGramConfig{MinSize: 1, MaxSize: 3, Edge: EdgeRight})
	got := CollectTerms(f.Apply(NewSliceStream(Token{"cats", 1})))
	if want := []string{"s", "ts", "ats"}; !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestASCIIFoldingFilter(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"café", "cafe"},
		{"naïve", "naive"},
		{"Ångström", "Angstrom"},
		{"straße", "strasse"},
		{"Łódź", "Lodz"},
		{"smørrebrød", "smorrebrod"},
		{"plain ascii", "plain ascii"},
		{"日本", "日本"},
	}
	for _, tt := range tests {
		out := Collect(ASCIIFoldingFilter{}.Apply(NewSliceStream(Token{tt.in, 7})))
		if len(out) != 1 {
			t.Fatalf("fold(%q) produced %d tokens", tt.in, len(out))
		}
		if out[0].Term != tt.want {
			t.Errorf("fold(%q) = %q, want %q", tt.in, out[0].Term, tt.want)
		}
		if out[0].Position != 7 {
			t.Errorf("fold(%q) position = %d, want 7", tt.in, out[0].Position)
		}
	}
}

func TestASCIIFoldingFilter_Fixpoint(t *testing.T) {
	once := CollectTerms(ASCIIFoldingFilter{}.Apply(NewSliceStream(Token{"Crème Brûlée", 1})))
	twice := CollectTerms(ASCIIFoldingFilter{}.Apply(NewSliceStream(Token{once[0], 1})))
	if once[0] != twice[0] {
		t.Errorf("fold not idempotent: %q then %q", once[0], twice[0])
	}
}

func TestAnalyzer_Chain(t *testing.T) {
	a := NewAnalyzer(StandardTokenizer{}, LowercaseFilter{}, ASCIIFoldingFilter{})
	got := a.Terms("Le Café, est BON")
	want := []string{"le", "cafe", "est", "bon"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms = %v, want %v", got, want)
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{Standard, "Quick FOX", []string{"quick", "fox"}},
		{ASCII, "Déjà Vu", []string{"deja", "vu"}},
		{EdgeNGram, "Élan", []string{"el", "ela", "elan"}},
		{NGram, "Abc", []string{"ab", "bc", "abc"}},
	}
	for _, tt := range tests {
		a, ok := Presets().Lookup(tt.name)
		if !ok {
			t.Fatalf("preset %q missing", tt.name)
		}
		if got := a.Terms(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s.Terms(%q) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestRegistry_FallbackAndDuplicates(t *testing.T) {
	r := NewRegistry(Presets())
	if _, ok := r.Lookup(Standard); !ok {
		t.Error("child registry should see presets")
	}
	custom := NewAnalyzer(StandardTokenizer{})
	if err := r.Register("raw", custom); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("raw", custom); !errors.Is(err, domain.ErrInvalidAnalyzer) {
		t.Errorf("duplicate Register error = %v", err)
	}
	if _, ok := Presets().Lookup("raw"); ok {
		t.Error("child registration leaked into presets")
	}
	if names := r.Names(); !reflect.DeepEqual(names, []string{"raw"}) {
		t.Errorf("Names() = %v", names)
	}
}
