package analysis

// Analyzer is one tokenizer followed by an ordered filter chain.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	tokenizer Tokenizer
	filters   []Filter
}

// NewAnalyzer creates an analyzer from a tokenizer and filters applied in order.
func NewAnalyzer(t Tokenizer, filters ...Filter) *Analyzer {
	return &Analyzer{tokenizer: t, filters: filters}
}

// Analyze returns a fresh lazy stream over text.
func (a *Analyzer) Analyze(text string) TokenStream {
	ts := a.tokenizer.Tokenize(text)
	for _, f := range a.filters {
		ts = f.Apply(ts)
	}
	return ts
}

// Terms analyzes text and drains the stream.
func (a *Analyzer) Terms(text string) []string {
	return CollectTerms(a.Analyze(text))
}

// Tokenizer returns the analyzer's tokenizer.
func (a *Analyzer) Tokenizer() Tokenizer { return a.tokenizer }

// Filters returns a copy of the filter chain.
func (a *Analyzer) Filters() []Filter {
	out := make([]Filter, len(a.filters))
	copy(out, a.filters)
	return out
}
