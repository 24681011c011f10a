package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/textdex/internal/domain"
)

// ngramSpec is the JSON shape of n-gram tokenizers and filters.
type ngramSpec struct {
	Type    string `json:"type"`
	Side    string `json:"side,omitempty"`
	MinGram *int   `json:"min_gram,omitempty"`
	MaxGram *int   `json:"max_gram,omitempty"`
}

func (c NGramConfig) spec() ngramSpec {
	minGram, maxGram := c.MinSize, c.MaxSize
	s := ngramSpec{MinGram: &minGram, MaxGram: &maxGram}
	switch c.Edge {
	case EdgeLeft:
		s.Type, s.Side = "edgeNGram", "front"
	case EdgeRight:
		s.Type, s.Side = "edgeNGram", "back"
	default:
		s.Type = "ngram"
	}
	return s
}

// MarshalJSON implements json.Marshaler.
func (StandardTokenizer) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"standard"}`), nil
}

// MarshalJSON implements json.Marshaler.
func (LowercaseTokenizer) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"lowercase"}`), nil
}

// MarshalJSON implements json.Marshaler.
func (t NGramTokenizer) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.spec())
}

// MarshalJSON implements json.Marshaler.
func (LowercaseFilter) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"lowercase"}`), nil
}

// MarshalJSON implements json.Marshaler.
func (ASCIIFoldingFilter) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"asciifolding"}`), nil
}

// MarshalJSON implements json.Marshaler.
func (f NGramFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.spec())
}

// MarshalJSON renders the analyzer as a custom analyzer definition.
func (a *Analyzer) MarshalJSON() ([]byte, error) {
	filters := make([]any, 0, len(a.filters))
	for _, f := range a.filters {
		filters = append(filters, f)
	}
	return json.Marshal(map[string]any{
		"type":      "custom",
		"tokenizer": a.tokenizer,
		"filter":    filters,
	})
}

// ParseTokenizer decodes a tokenizer given either by name ("standard") or as
// an object ({"type": "edgeNGram", "side": "front", "min_gram": 2, "max_gram": 10}).
func ParseTokenizer(raw json.RawMessage) (Tokenizer, error) {
	typ, ng, err := decodeSpec(raw)
	if err != nil {
		return nil, err
	}
	switch typ {
	case "standard":
		return StandardTokenizer{}, nil
	case "lowercase":
		return LowercaseTokenizer{}, nil
	case "ngram", "nGram", "edgeNGram", "edge_ngram":
		cfg, err := ng.config(typ)
		if err != nil {
			return nil, err
		}
		return NewNGramTokenizer(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown tokenizer type %q", domain.ErrInvalidAnalyzer, typ)
	}
}

// ParseFilter decodes a token filter given by name or as an object.
func ParseFilter(raw json.RawMessage) (Filter, error) {
	typ, ng, err := decodeSpec(raw)
	if err != nil {
		return nil, err
	}
	switch typ {
	case "lowercase":
		return LowercaseFilter{}, nil
	case "asciifolding":
		return ASCIIFoldingFilter{}, nil
	case "ngram", "nGram", "edgeNGram", "edge_ngram":
		cfg, err := ng.config(typ)
		if err != nil {
			return nil, err
		}
		return NewNGramFilter(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown filter type %q", domain.ErrInvalidAnalyzer, typ)
	}
}

func decodeSpec(raw json.RawMessage) (string, ngramSpec, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return "", ngramSpec{}, fmt.Errorf("%w: %w", domain.ErrInvalidAnalyzer, err)
		}
		return name, ngramSpec{}, nil
	}
	var s ngramSpec
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", ngramSpec{}, fmt.Errorf("%w: %w", domain.ErrInvalidAnalyzer, err)
	}
	if s.Type == "" {
		return "", ngramSpec{}, fmt.Errorf("%w: missing \"type\"", domain.ErrInvalidAnalyzer)
	}
	return s.Type, s, nil
}

// config applies the usual n-gram defaults (1..2, front side).
func (s ngramSpec) config(typ string) (NGramConfig, error) {
	cfg := NGramConfig{MinSize: 1, MaxSize: 2, Edge: EdgeNeither}
	if s.MinGram != nil {
		cfg.MinSize = *s.MinGram
	}
	if s.MaxGram != nil {
		cfg.MaxSize = *s.MaxGram
	}
	if typ == "edgeNGram" || typ == "edge_ngram" {
		switch s.Side {
		case "", "front":
			cfg.Edge = EdgeLeft
		case "back":
			cfg.Edge = EdgeRight
		default:
			return NGramConfig{}, fmt.Errorf("%w: unknown edge n-gram side %q", domain.ErrInvalidAnalyzer, s.Side)
		}
	}
	return cfg, nil
}

type analysisSettings struct {
	Tokenizer map[string]json.RawMessage `json:"tokenizer"`
	Filter    map[string]json.RawMessage `json:"filter"`
	Analyzer  map[string]analyzerDef     `json:"analyzer"`
}

type analyzerDef struct {
	Type      string            `json:"type"`
	Tokenizer json.RawMessage   `json:"tokenizer"`
	Filter    []json.RawMessage `json:"filter"`
}

// ParseSettings builds an index-local registry from index settings.
// Both {"analysis": {...}} and {"index": {"analysis": {...}}} are accepted.
// Custom tokenizers and filters may be referenced by name from analyzers;
// unknown analyzer names fall back to the presets.
func ParseSettings(raw json.RawMessage) (*Registry, error) {
	reg := NewRegistry(Presets())
	if len(bytes.TrimSpace(raw)) == 0 {
		return reg, nil
	}

	var envelope struct {
		Analysis *analysisSettings `json:"analysis"`
		Index    *struct {
			Analysis *analysisSettings `json:"analysis"`
		} `json:"index"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: settings: %w", domain.ErrInvalidSchema, err)
	}
	as := envelope.Analysis
	if as == nil && envelope.Index != nil {
		as = envelope.Index.Analysis
	}
	if as == nil {
		return reg, nil
	}

	tokenizers := make(map[string]Tokenizer, len(as.Tokenizer))
	for name, def := range as.Tokenizer {
		t, err := ParseTokenizer(def)
		if err != nil {
			return nil, fmt.Errorf("tokenizer %q: %w", name, err)
		}
		tokenizers[name] = t
	}
	filters := make(map[string]Filter, len(as.Filter))
	for name, def := range as.Filter {
		f, err := ParseFilter(def)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", name, err)
		}
		filters[name] = f
	}

	for name, def := range as.Analyzer {
		a, err := def.build(tokenizers, filters)
		if err != nil {
			return nil, fmt.Errorf("analyzer %q: %w", name, err)
		}
		if err := reg.Register(name, a); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (d analyzerDef) build(tokenizers map[string]Tokenizer, filters map[string]Filter) (*Analyzer, error) {
	if d.Type != "" && d.Type != "custom" {
		a, ok := Presets().Lookup(d.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unknown analyzer type %q", domain.ErrInvalidAnalyzer, d.Type)
		}
		return a, nil
	}
	if len(d.Tokenizer) == 0 {
		return nil, fmt.Errorf("%w: custom analyzer requires a tokenizer", domain.ErrInvalidAnalyzer)
	}

	t, err := resolveTokenizer(d.Tokenizer, tokenizers)
	if err != nil {
		return nil, err
	}
	chain := make([]Filter, 0, len(d.Filter))
	for _, raw := range d.Filter {
		f, err := resolveFilter(raw, filters)
		if err != nil {
			return nil, err
		}
		chain = append(chain, f)
	}
	return NewAnalyzer(t, chain...), nil
}

func resolveTokenizer(raw json.RawMessage, named map[string]Tokenizer) (Tokenizer, error) {
	var name string
	if json.Unmarshal(raw, &name) == nil {
		if t, ok := named[name]; ok {
			return t, nil
		}
	}
	return ParseTokenizer(raw)
}

func resolveFilter(raw json.RawMessage, named map[string]Filter) (Filter, error) {
	var name string
	if json.Unmarshal(raw, &name) == nil {
		if f, ok := named[name]; ok {
			return f, nil
		}
	}
	return ParseFilter(raw)
}
