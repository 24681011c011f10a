package textdex

import "encoding/json"

// IndexInfo describes an index.
type IndexInfo struct {
	Name      string
	Settings  json.RawMessage
	Mappings  map[string]json.RawMessage // type name -> mapping JSON
	Aliases   []string
	Documents int
}

// Document is a stored document with its original source.
type Document struct {
	Index  string
	Type   string
	ID     string
	Source json.RawMessage
}

// Hit is a single ranked search result.
type Hit struct {
	Index  string
	Type   string
	ID     string
	Score  float64
	Source json.RawMessage
}

// SearchResult is one page of ranked hits. Total counts every match,
// not only the returned page.
type SearchResult struct {
	Total    int
	MaxScore float64
	Hits     []Hit
}

// BulkResult is the outcome of one bulk operation.
type BulkResult struct {
	Action string // index, create or delete
	Index  string
	Type   string
	ID     string
	Result string // created, updated or deleted; empty on error
	Err    error
}

// OK reports whether the operation succeeded.
func (r BulkResult) OK() bool { return r.Err == nil }
