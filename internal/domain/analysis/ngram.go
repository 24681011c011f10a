package analysis

import (
	"fmt"

	"github.com/kailas-cloud/textdex/internal/domain"
)

// Edge anchors n-gram windows to one end of the input.
type Edge string

// Edge values.
const (
	// EdgeNeither emits every window (classic n-grams).
	EdgeNeither Edge = "neither"
	// EdgeLeft emits only windows starting at the first rune (prefixes).
	EdgeLeft Edge = "left"
	// EdgeRight emits only windows ending at the last rune (suffixes).
	EdgeRight Edge = "right"
)

// NGramConfig holds the window sizes and anchoring shared by the n-gram
// tokenizer and filter.
type NGramConfig struct {
	MinSize int
	MaxSize int
	Edge    Edge
}

// Validate checks sizes and edge.
func (c NGramConfig) Validate() error {
	if c.MinSize < 1 {
		return fmt.Errorf("%w: min_gram must be at least 1, got %d", domain.ErrInvalidAnalyzer, c.MinSize)
	}
	if c.MaxSize < c.MinSize {
		return fmt.Errorf("%w: max_gram %d is below min_gram %d", domain.ErrInvalidAnalyzer, c.MaxSize, c.MinSize)
	}
	switch c.Edge {
	case EdgeNeither, EdgeLeft, EdgeRight:
		return nil
	default:
		return fmt.Errorf("%w: unknown n-gram edge %q", domain.ErrInvalidAnalyzer, c.Edge)
	}
}

// ngramIter enumerates windows lazily.
// Sizes go from MinSize up to MaxSize; within one size, windows go left to right.
type ngramIter struct {
	runes []rune
	cfg   NGramConfig
	size  int
	start int
}

func newNGramIter(s string, cfg NGramConfig) *ngramIter {
	return &ngramIter{runes: []rune(s), cfg: cfg, size: cfg.MinSize}
}

func (it *ngramIter) next() (string, bool) {
	n := len(it.runes)
	for it.size <= it.cfg.MaxSize && it.size <= n {
		switch it.cfg.Edge {
		case EdgeLeft:
			gram := string(it.runes[:it.size])
			it.size++
			return gram, true
		case EdgeRight:
			gram := string(it.runes[n-it.size:])
			it.size++
			return gram, true
		default:
			if it.start+it.size <= n {
				gram := string(it.runes[it.start : it.start+it.size])
				it.start++
				return gram, true
			}
			it.size++
			it.start = 0
		}
	}
	return "", false
}
