package index

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
)

// State is the persisted form of an index. Documents carry the fields they
// were converted to at ingest, so restoring never re-runs analysis and a
// document indexed under an older mapping keeps its terms.
type State struct {
	Name      string
	Settings  json.RawMessage
	Mappings  []MappingState
	Documents []DocumentState
	Aliases   []string
}

// MappingState is one persisted mapping.
type MappingState struct {
	Type       string
	Definition json.RawMessage
}

// DocumentState is one persisted document.
type DocumentState struct {
	ID     string
	Type   string
	Source json.RawMessage
	Fields []document.Field
}

// Export captures the index under one read lock. Documents come out in
// insertion order.
func (ix *Index) Export() (State, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	st := State{
		Name:     ix.name,
		Settings: ix.settings,
	}
	for _, name := range ix.mappingOrder {
		def, err := json.Marshal(ix.mappings[name])
		if err != nil {
			return State{}, fmt.Errorf("export mapping %s/%s: %w", ix.name, name, err)
		}
		st.Mappings = append(st.Mappings, MappingState{Type: name, Definition: def})
	}

	entries := make([]entry, 0, len(ix.docs))
	for _, e := range ix.docs {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	for _, e := range entries {
		st.Documents = append(st.Documents, DocumentState{
			ID:     e.doc.ID(),
			Type:   e.doc.Type(),
			Source: e.doc.Source(),
			Fields: e.doc.Fields(),
		})
	}

	for a := range ix.aliases {
		st.Aliases = append(st.Aliases, a)
	}
	sort.Strings(st.Aliases)
	return st, nil
}

// Restore rebuilds an index from a snapshot. Documents are hydrated as
// exported; opts only governs documents written after the restore.
func Restore(st State, opts Options) (*Index, error) {
	ix, err := New(st.Name, st.Settings, opts)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", st.Name, err)
	}
	for _, m := range st.Mappings {
		if _, err := ix.PutMapping(m.Type, m.Definition); err != nil {
			return nil, fmt.Errorf("restore %s mapping %s: %w", st.Name, m.Type, err)
		}
	}
	for _, d := range st.Documents {
		if _, ok := ix.mappings[d.Type]; !ok {
			return nil, fmt.Errorf("restore %s document %s: %s: %w", st.Name, d.ID, d.Type, domain.ErrMappingNotFound)
		}
		if _, dup := ix.docs[d.ID]; dup {
			return nil, fmt.Errorf("restore %s: %w: duplicate document id %q", st.Name, domain.ErrInvalidSchema, d.ID)
		}
		doc, err := document.Reconstruct(d.ID, d.Type, d.Source, d.Fields)
		if err != nil {
			return nil, fmt.Errorf("restore %s document %s: %w", st.Name, d.ID, err)
		}
		ix.nextSeq++
		ix.docs[d.ID] = entry{seq: ix.nextSeq, doc: doc}
	}
	for _, a := range st.Aliases {
		if err := ix.AddAlias(a); err != nil {
			return nil, fmt.Errorf("restore %s alias %s: %w", st.Name, a, err)
		}
	}
	return ix, nil
}
