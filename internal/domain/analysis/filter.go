package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filter transforms one token stream into another.
type Filter interface {
	Apply(in TokenStream) TokenStream
}

// LowercaseFilter case-folds every term. Positions and token count are kept.
type LowercaseFilter struct{}

// Apply implements Filter.
func (LowercaseFilter) Apply(in TokenStream) TokenStream {
	// cases.Caser keeps state between calls, one per stream.
	return &lowercaseStream{in: in, caser: cases.Lower(language.Und)}
}

type lowercaseStream struct {
	in    TokenStream
	caser cases.Caser
}

func (s *lowercaseStream) Next() (Token, bool) {
	tok, ok := s.in.Next()
	if !ok {
		return Token{}, false
	}
	tok.Term = s.caser.String(tok.Term)
	return tok, true
}

// NGramFilter expands every term into its windows.
// All grams of one input token carry that token's position; terms shorter
// than MinSize produce nothing.
type NGramFilter struct {
	NGramConfig
}

// NewNGramFilter validates cfg and builds the filter.
func NewNGramFilter(cfg NGramConfig) (NGramFilter, error) {
	if err := cfg.Validate(); err != nil {
		return NGramFilter{}, err
	}
	return NGramFilter{NGramConfig: cfg}, nil
}

// Apply implements Filter.
func (f NGramFilter) Apply(in TokenStream) TokenStream {
	return &ngramFilterStream{in: in, cfg: f.NGramConfig}
}

type ngramFilterStream struct {
	in  TokenStream
	cfg NGramConfig
	cur *ngramIter
	pos int
}

func (s *ngramFilterStream) Next() (Token, bool) {
	for {
		if s.cur != nil {
			if gram, ok := s.cur.next(); ok {
				return Token{Term: gram, Position: s.pos}, true
			}
			s.cur = nil
		}
		tok, ok := s.in.Next()
		if !ok {
			return Token{}, false
		}
		s.cur = newNGramIter(tok.Term, s.cfg)
		s.pos = tok.Position
	}
}

// ASCIIFoldingFilter replaces accented and special Latin letters with their
// closest ASCII equivalent ("café" -> "cafe", "straße" -> "strasse").
// Letters with no equivalent pass through unchanged.
type ASCIIFoldingFilter struct{}

// Apply implements Filter.
func (ASCIIFoldingFilter) Apply(in TokenStream) TokenStream {
	return &foldingStream{
		in: in,
		t:  transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

type foldingStream struct {
	in TokenStream
	t  transform.Transformer
}

func (s *foldingStream) Next() (Token, bool) {
	tok, ok := s.in.Next()
	if !ok {
		return Token{}, false
	}
	tok.Term = fold(s.t, tok.Term)
	return tok, true
}

// Letters that do not decompose into base letter + combining mark.
var specialFolds = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'ł': "l", 'Ł': "L",
	'þ': "th", 'Þ': "TH",
	'ı': "i",
	'ħ': "h", 'Ħ': "H",
	'ŀ': "l", 'Ŀ': "L",
	'ŧ': "t", 'Ŧ': "T",
}

func fold(t transform.Transformer, term string) string {
	if isASCII(term) {
		return term
	}
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if rep, ok := specialFolds[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}
	out, _, err := transform.String(t, b.String())
	if err != nil {
		return b.String()
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
