// Package analysis turns raw text into positioned tokens.
//
// A Tokenizer produces the initial TokenStream from text, Filters wrap one
// stream in another, and an Analyzer chains one tokenizer with any number of
// filters. Streams are pull-based, finite and single-pass: to re-read the
// tokens of a text, call Tokenize (or Analyze) again.
package analysis

// Token is one analyzed term and its 1-based position in the source text.
type Token struct {
	Term     string
	Position int
}

// TokenStream is a lazy, single-pass sequence of tokens.
// Next returns false once the stream is exhausted and keeps returning false.
type TokenStream interface {
	Next() (Token, bool)
}

// Collect drains a stream into a slice.
func Collect(ts TokenStream) []Token {
	var out []Token
	for {
		tok, ok := ts.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

// CollectTerms drains a stream and keeps only the terms, in emission order.
func CollectTerms(ts TokenStream) []string {
	var out []string
	for {
		tok, ok := ts.Next()
		if !ok {
			return out
		}
		out = append(out, tok.Term)
	}
}

// sliceStream replays a fixed list of tokens.
type sliceStream struct {
	tokens []Token
	i      int
}

// NewSliceStream returns a stream over the given tokens.
func NewSliceStream(tokens ...Token) TokenStream {
	return &sliceStream{tokens: tokens}
}

func (s *sliceStream) Next() (Token, bool) {
	if s.i >= len(s.tokens) {
		return Token{}, false
	}
	tok := s.tokens[s.i]
	s.i++
	return tok, true
}
