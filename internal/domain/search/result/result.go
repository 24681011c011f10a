package result

import "encoding/json"

// Hit is a single ranked search hit.
type Hit struct {
	index   string
	docType string
	id      string
	score   float64
	source  json.RawMessage
}

// New creates a search hit.
func New(index, docType, id string, score float64, source json.RawMessage) Hit {
	return Hit{index: index, docType: docType, id: id, score: score, source: source}
}

// Index returns the name of the index holding the document.
func (h Hit) Index() string { return h.index }

// Type returns the document type.
func (h Hit) Type() string { return h.docType }

// ID returns the document identifier.
func (h Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h Hit) Score() float64 { return h.score }

// Source returns the original document body.
func (h Hit) Source() json.RawMessage { return h.source }

// Page is the outcome of a search: the top hits plus the full match count.
type Page struct {
	Hits  []Hit
	Total int
}

// MaxScore returns the best score among the hits, or 0 when there are none.
func (p Page) MaxScore() float64 {
	best := 0.0
	for i, h := range p.Hits {
		if i == 0 || h.score > best {
			best = h.score
		}
	}
	return best
}
