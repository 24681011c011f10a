package analysis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/textdex/internal/domain"
)

// Preset analyzer names.
const (
	Standard  = "standard"
	ASCII     = "ascii"
	EdgeNGram = "edge_ngram"
	NGram     = "ngram"
)

// Registry maps analyzer names to analyzers.
// Lookups that miss fall through to the parent registry, if any.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[string]*Analyzer
	parent    *Registry
}

// NewRegistry creates an empty registry that falls back to parent (may be nil).
func NewRegistry(parent *Registry) *Registry {
	return &Registry{
		analyzers: make(map[string]*Analyzer),
		parent:    parent,
	}
}

// Register adds an analyzer under name. Names must be unique within the registry;
// shadowing a parent's entry is allowed.
func (r *Registry) Register(name string, a *Analyzer) error {
	if name == "" {
		return fmt.Errorf("%w: analyzer name is required", domain.ErrInvalidAnalyzer)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.analyzers[name]; exists {
		return fmt.Errorf("%w: analyzer %q is already registered", domain.ErrInvalidAnalyzer, name)
	}
	r.analyzers[name] = a
	return nil
}

// Lookup returns the analyzer registered under name.
func (r *Registry) Lookup(name string) (*Analyzer, bool) {
	r.mu.RLock()
	a, ok := r.analyzers[name]
	r.mu.RUnlock()
	if ok {
		return a, true
	}
	if r.parent != nil {
		return r.parent.Lookup(name)
	}
	return nil, false
}

// Names lists the names registered directly in this registry, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.analyzers))
	for n := range r.analyzers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Presets returns the process-wide registry of built-in analyzers:
//
//	standard    standard tokenizer, lowercase
//	ascii       standard tokenizer, lowercase, asciifolding
//	edge_ngram  standard tokenizer, lowercase, asciifolding, edge n-grams 2..15
//	ngram       standard tokenizer, lowercase, n-grams 2..3
var Presets = sync.OnceValue(func() *Registry {
	r := NewRegistry(nil)
	mustRegister(r, Standard, NewAnalyzer(StandardTokenizer{}, LowercaseFilter{}))
	mustRegister(r, ASCII, NewAnalyzer(StandardTokenizer{}, LowercaseFilter{}, ASCIIFoldingFilter{}))
	mustRegister(r, EdgeNGram, NewAnalyzer(StandardTokenizer{},
		LowercaseFilter{},
		ASCIIFoldingFilter{},
		NGramFilter{NGramConfig{MinSize: 2, MaxSize: 15, Edge: EdgeLeft}},
	))
	mustRegister(r, NGram, NewAnalyzer(StandardTokenizer{},
		LowercaseFilter{},
		NGramFilter{NGramConfig{MinSize: 2, MaxSize: 3, Edge: EdgeNeither}},
	))
	return r
})

func mustRegister(r *Registry, name string, a *Analyzer) {
	if err := r.Register(name, a); err != nil {
		panic(err)
	}
}
