// Package index holds the mappings, documents and aliases of one named index.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/analysis"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/mapping"
	"github.com/kailas-cloud/textdex/internal/domain/query"
	"github.com/kailas-cloud/textdex/internal/domain/value"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// MaxNameLength is the maximum index or alias name length.
const MaxNameLength = 255

// ValidateName checks an index or alias name.
// Names are lowercase, start with a letter or digit and may contain '.', '_' and '-'.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name too long (max %d)", domain.ErrInvalidName, MaxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q must be lowercase alphanumeric with '.', '_' or '-'", domain.ErrInvalidName, name)
	}
	return nil
}

// Options tunes document conversion.
type Options struct {
	// DefaultAnalyzer analyzes text fields without an explicit analyzer and _all.
	DefaultAnalyzer string
	// LenientConversion stores array and object fields as null instead of rejecting the document.
	LenientConversion bool
}

type entry struct {
	seq uint64
	doc *document.Document
}

// Index is a named collection of mappings, documents and aliases.
//
// Readers share the index; any mutation takes it exclusively. Documents are
// immutable and swapped whole, so a reader sees either the old or the new
// version of a replaced document.
type Index struct {
	mu sync.RWMutex

	name      string
	settings  json.RawMessage
	analyzers *analysis.Registry
	opts      Options

	mappings     map[string]*mapping.Mapping
	mappingOrder []string
	docs         map[string]entry
	nextSeq      uint64
	aliases      map[string]struct{}
}

// New validates the name, parses analysis settings and creates an empty index.
func New(name string, settings json.RawMessage, opts Options) (*Index, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	analyzers, err := analysis.ParseSettings(settings)
	if err != nil {
		return nil, err
	}
	if opts.DefaultAnalyzer == "" {
		opts.DefaultAnalyzer = analysis.Standard
	}
	if _, ok := analyzers.Lookup(opts.DefaultAnalyzer); !ok {
		return nil, fmt.Errorf("%w: unknown default analyzer %q", domain.ErrInvalidAnalyzer, opts.DefaultAnalyzer)
	}

	return &Index{
		name:      name,
		settings:  cloneRaw(settings),
		analyzers: analyzers,
		opts:      opts,
		mappings:  make(map[string]*mapping.Mapping),
		docs:      make(map[string]entry),
		aliases:   make(map[string]struct{}),
	}, nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Settings returns the raw settings the index was created with.
func (ix *Index) Settings() json.RawMessage { return ix.settings }

// Analyzers returns the index analyzer registry (custom analyzers over presets).
func (ix *Index) Analyzers() *analysis.Registry { return ix.analyzers }

// PutMapping parses and installs (or replaces) the mapping of a document type.
// Existing documents are not reprocessed.
func (ix *Index) PutMapping(typeName string, raw json.RawMessage) (*mapping.Mapping, error) {
	m, err := mapping.Parse(typeName, raw, ix.analyzers, ix.opts.DefaultAnalyzer)
	if err != nil {
		return nil, err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.mappings[typeName]; !exists {
		ix.mappingOrder = append(ix.mappingOrder, typeName)
	}
	ix.mappings[typeName] = m
	return m, nil
}

// Mapping returns the mapping of a document type.
func (ix *Index) Mapping(typeName string) (*mapping.Mapping, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	m, ok := ix.mappings[typeName]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", ix.name, typeName, domain.ErrMappingNotFound)
	}
	return m, nil
}

// Mappings returns all mappings in creation order.
func (ix *Index) Mappings() []*mapping.Mapping {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]*mapping.Mapping, 0, len(ix.mappingOrder))
	for _, name := range ix.mappingOrder {
		out = append(out, ix.mappings[name])
	}
	return out
}

// DeleteMapping removes a mapping together with the documents of that type.
// It returns the number of documents removed.
func (ix *Index) DeleteMapping(typeName string) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.mappings[typeName]; !ok {
		return 0, fmt.Errorf("%s/%s: %w", ix.name, typeName, domain.ErrMappingNotFound)
	}
	delete(ix.mappings, typeName)
	for i, name := range ix.mappingOrder {
		if name == typeName {
			ix.mappingOrder = append(ix.mappingOrder[:i], ix.mappingOrder[i+1:]...)
			break
		}
	}

	removed := 0
	for id, e := range ix.docs {
		if e.doc.Type() == typeName {
			delete(ix.docs, id)
			removed++
		}
	}
	return removed, nil
}

// PutDocument converts body with the type's current mapping and stores it
// under id, replacing any previous document with that id. A replaced document
// keeps its insertion position. created reports whether id was new.
func (ix *Index) PutDocument(typeName, id string, body json.RawMessage) (created bool, err error) {
	return ix.store(typeName, id, body, true)
}

// InsertDocument stores a new document and fails with ErrDocumentExists when
// id is already taken.
func (ix *Index) InsertDocument(typeName, id string, body json.RawMessage) error {
	_, err := ix.store(typeName, id, body, false)
	return err
}

func (ix *Index) store(typeName, id string, body json.RawMessage, replace bool) (bool, error) {
	m, err := ix.Mapping(typeName)
	if err != nil {
		return false, err
	}
	// conversion runs outside the lock; the mapping snapshot is immutable
	doc, err := document.New(id, typeName, body, m, value.Options{Lenient: ix.opts.LenientConversion})
	if err != nil {
		return false, err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if prev, ok := ix.docs[id]; ok {
		if !replace {
			return false, fmt.Errorf("%s/%s: %w", ix.name, id, domain.ErrDocumentExists)
		}
		ix.docs[id] = entry{seq: prev.seq, doc: doc}
		return false, nil
	}
	ix.nextSeq++
	ix.docs[id] = entry{seq: ix.nextSeq, doc: doc}
	return true, nil
}

// Document returns the document stored under id.
func (ix *Index) Document(id string) (*document.Document, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	e, ok := ix.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", ix.name, id, domain.ErrDocumentNotFound)
	}
	return e.doc, nil
}

// DeleteDocument removes the document stored under id.
func (ix *Index) DeleteDocument(id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.docs[id]; !ok {
		return fmt.Errorf("%s/%s: %w", ix.name, id, domain.ErrDocumentNotFound)
	}
	delete(ix.docs, id)
	return nil
}

// DocCount returns the number of stored documents.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Match is one document matched by a query.
type Match struct {
	Doc   *document.Document
	Score float64
	// Seq is the insertion sequence, used as a stable tie-breaker.
	Seq uint64
}

// Evaluate runs q over every document and returns the matches in insertion order.
// Count and search both go through Evaluate so they always agree.
func (ix *Index) Evaluate(q query.Query) []Match {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []Match
	for _, e := range ix.docs {
		if s, ok := q.Score(e.doc); ok {
			out = append(out, Match{Doc: e.doc, Score: s, Seq: e.seq})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// FieldAnalyzer returns the analyzer used for full-text queries on field:
// the default analyzer for _all, otherwise the analyzer of the first mapping
// that declares field as text.
func (ix *Index) FieldAnalyzer(field string) (*analysis.Analyzer, bool) {
	if field == mapping.AllField {
		return ix.analyzers.Lookup(ix.opts.DefaultAnalyzer)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	for _, name := range ix.mappingOrder {
		if f, ok := ix.mappings[name].Field(field); ok {
			if a, ok := f.Analyzer(); ok {
				return a, true
			}
		}
	}
	return nil, false
}

// AddAlias tags the index with alias. Adding an existing alias is a no-op.
func (ix *Index) AddAlias(alias string) error {
	if err := ValidateName(alias); err != nil {
		return err
	}
	if alias == ix.name {
		return fmt.Errorf("%w: alias %q equals the index name", domain.ErrInvalidName, alias)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.aliases[alias] = struct{}{}
	return nil
}

// RemoveAlias removes alias from the index.
func (ix *Index) RemoveAlias(alias string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.aliases[alias]; !ok {
		return fmt.Errorf("%s/%s: %w", ix.name, alias, domain.ErrAliasNotFound)
	}
	delete(ix.aliases, alias)
	return nil
}

// HasAlias reports whether the index carries alias.
func (ix *Index) HasAlias(alias string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.aliases[alias]
	return ok
}

// Aliases returns the index aliases, sorted.
func (ix *Index) Aliases() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]string, 0, len(ix.aliases))
	for a := range ix.aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
