// Package query is the search query tree and its evaluator.
//
// Queries are immutable once built. Score returns whether a document matches
// and, if it does, the score it contributes. Leaves score their boost;
// compound nodes combine child scores as documented on each type.
package query

import "github.com/kailas-cloud/textdex/internal/domain/value"

// FieldSource is the read-only view of a document a query is evaluated on.
type FieldSource interface {
	Field(name string) (value.Value, bool)
}

// Query is one node of a query tree.
type Query interface {
	// Score reports whether doc matches and the score it contributes.
	Score(doc FieldSource) (float64, bool)
}

// Matches reports whether doc matches q.
func Matches(q Query, doc FieldSource) bool {
	_, ok := q.Score(doc)
	return ok
}

// MatchAll matches every document.
type MatchAll struct {
	Boost float64
}

// Score implements Query.
func (q MatchAll) Score(FieldSource) (float64, bool) { return q.Boost, true }

// MatchNone matches nothing.
type MatchNone struct{}

// Score implements Query.
func (MatchNone) Score(FieldSource) (float64, bool) { return 0, false }

// Matcher selects how MatchTerm compares terms.
type Matcher uint8

// Matchers.
const (
	Exact Matcher = iota
	Prefix
)

func (m Matcher) String() string {
	if m == Prefix {
		return "prefix"
	}
	return "exact"
}

// MatchTerm matches documents whose field holds Term.
type MatchTerm struct {
	Field   string
	Term    string
	Matcher Matcher
	Boost   float64
}

// Score implements Query.
func (q MatchTerm) Score(doc FieldSource) (float64, bool) {
	v, ok := doc.Field(q.Field)
	if !ok || !v.MatchTerm(q.Term, q.Matcher == Prefix) {
		return 0, false
	}
	return q.Boost, true
}

// Bool combines clauses.
//
// Filter clauses must all match and add nothing to the score. Must clauses
// must all match and add their scores. MustNot clauses must not match.
// Should clauses add the scores of those that match; when both Must and
// Filter are empty, at least MinimumShouldMatch of them have to match.
// The total is multiplied by Boost.
type Bool struct {
	Must               []Query
	MustNot            []Query
	Should             []Query
	Filter             []Query
	MinimumShouldMatch int
	Boost              float64
}

// Score implements Query.
func (q Bool) Score(doc FieldSource) (float64, bool) {
	for _, c := range q.Filter {
		if !Matches(c, doc) {
			return 0, false
		}
	}

	var total float64
	for _, c := range q.Must {
		s, ok := c.Score(doc)
		if !ok {
			return 0, false
		}
		total += s
	}

	for _, c := range q.MustNot {
		if Matches(c, doc) {
			return 0, false
		}
	}

	matched := 0
	for _, c := range q.Should {
		if s, ok := c.Score(doc); ok {
			matched++
			total += s
		}
	}
	if len(q.Must) == 0 && len(q.Filter) == 0 && matched < q.MinimumShouldMatch {
		return 0, false
	}
	return total * q.Boost, true
}

// DisjunctionMax matches when any child matches and scores the best child.
type DisjunctionMax struct {
	Queries []Query
	Boost   float64
}

// Score implements Query.
func (q DisjunctionMax) Score(doc FieldSource) (float64, bool) {
	var best float64
	found := false
	for _, c := range q.Queries {
		s, ok := c.Score(doc)
		if !ok {
			continue
		}
		if !found || s > best {
			best = s
		}
		found = true
	}
	if !found {
		return 0, false
	}
	return best * q.Boost, true
}

// BoostScore rescales the score of Query as score*Mul + Add.
type BoostScore struct {
	Query Query
	Mul   float64
	Add   float64
}

// Score implements Query.
func (q BoostScore) Score(doc FieldSource) (float64, bool) {
	s, ok := q.Query.Score(doc)
	if !ok {
		return 0, false
	}
	return s*q.Mul + q.Add, true
}
