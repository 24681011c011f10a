package query

// And requires every query to match.
// No queries yields MatchNone and a single query is returned as is.
func And(qs ...Query) Query {
	switch len(qs) {
	case 0:
		return MatchNone{}
	case 1:
		return qs[0]
	default:
		return Bool{Must: qs, Boost: 1}
	}
}

// Or requires at least one query to match, following the same
// zero/one/many rule as And.
func Or(qs ...Query) Query {
	switch len(qs) {
	case 0:
		return MatchNone{}
	case 1:
		return qs[0]
	default:
		return Bool{Should: qs, MinimumShouldMatch: 1, Boost: 1}
	}
}

// DisMax scores the best matching query, following the same zero/one/many
// rule as And.
func DisMax(qs ...Query) Query {
	switch len(qs) {
	case 0:
		return MatchNone{}
	case 1:
		return qs[0]
	default:
		return DisjunctionMax{Queries: qs, Boost: 1}
	}
}

// Score wraps q in a score transform; the identity transform returns q.
func Score(q Query, mul, add float64) Query {
	if mul == 1 && add == 0 {
		return q
	}
	return BoostScore{Query: q, Mul: mul, Add: add}
}

// Term builds an exact MatchTerm with boost 1.
func Term(field, term string) Query {
	return MatchTerm{Field: field, Term: term, Matcher: Exact, Boost: 1}
}

// PrefixTerm builds a prefix MatchTerm with boost 1.
func PrefixTerm(field, prefix string) Query {
	return MatchTerm{Field: field, Term: prefix, Matcher: Prefix, Boost: 1}
}
