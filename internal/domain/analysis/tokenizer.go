package analysis

import (
	"github.com/blevesearch/segment"
)

// Tokenizer splits raw text into the initial token stream.
type Tokenizer interface {
	Tokenize(text string) TokenStream
}

// StandardTokenizer segments text on Unicode word boundaries (UAX #29).
// Runs without letters, digits or ideographs are dropped.
type StandardTokenizer struct{}

// Tokenize implements Tokenizer.
func (StandardTokenizer) Tokenize(text string) TokenStream {
	return &standardStream{seg: segment.NewWordSegmenterDirect([]byte(text))}
}

type standardStream struct {
	seg  *segment.Segmenter
	pos  int
	done bool
}

func (s *standardStream) Next() (Token, bool) {
	if s.done {
		return Token{}, false
	}
	for s.seg.Segment() {
		if s.seg.Type() == segment.None {
			continue
		}
		s.pos++
		return Token{Term: string(s.seg.Bytes()), Position: s.pos}, true
	}
	s.done = true
	return Token{}, false
}

// LowercaseTokenizer is a StandardTokenizer followed by lowercasing.
type LowercaseTokenizer struct{}

// Tokenize implements Tokenizer.
func (LowercaseTokenizer) Tokenize(text string) TokenStream {
	return LowercaseFilter{}.Apply(StandardTokenizer{}.Tokenize(text))
}

// NGramTokenizer emits windows of the whole input text.
// Positions increase by one per emitted gram.
type NGramTokenizer struct {
	NGramConfig
}

// NewNGramTokenizer validates cfg and builds the tokenizer.
func NewNGramTokenizer(cfg NGramConfig) (NGramTokenizer, error) {
	if err := cfg.Validate(); err != nil {
		return NGramTokenizer{}, err
	}
	return NGramTokenizer{NGramConfig: cfg}, nil
}

// Tokenize implements Tokenizer.
func (t NGramTokenizer) Tokenize(text string) TokenStream {
	return &ngramTokenStream{it: newNGramIter(text, t.NGramConfig)}
}

type ngramTokenStream struct {
	it  *ngramIter
	pos int
}

func (s *ngramTokenStream) Next() (Token, bool) {
	gram, ok := s.it.next()
	if !ok {
		return Token{}, false
	}
	s.pos++
	return Token{Term: gram, Position: s.pos}, true
}
