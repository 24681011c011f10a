// Package parser turns the JSON query DSL into a query tree.
//
// Supported types: match_all, match_none, term, terms, prefix, match,
// multi_match, bool, dis_max, function_score, constant_score and filtered.
// Shapes the parser does not recognize fail with a domain.ParseError;
// recognized clauses with invalid values fail with a domain.QueryError.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/analysis"
	"github.com/kailas-cloud/textdex/internal/domain/mapping"
	"github.com/kailas-cloud/textdex/internal/domain/query"
	"github.com/kailas-cloud/textdex/internal/domain/value"
)

// FieldAnalyzers resolves the analyzer used for full-text queries on a field.
// Fields without an analyzer are matched on the raw query text.
type FieldAnalyzers interface {
	FieldAnalyzer(field string) (*analysis.Analyzer, bool)
}

// Parse parses the value of a request's "query" key.
func Parse(raw json.RawMessage, fields FieldAnalyzers) (query.Query, error) {
	p := parser{fields: fields}
	return p.parse("query", raw)
}

// requestKeys are the top-level members a search or count body may carry.
var requestKeys = []string{"query", "size"}

// ParseRequest parses a search or count body. An empty body, or one without
// a "query" key, matches everything. Unknown top-level keys are rejected.
func ParseRequest(body []byte, fields FieldAnalyzers) (query.Query, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return query.MatchAll{Boost: 1}, nil
	}
	var req map[string]json.RawMessage
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, domain.NewParseError("", "request body: %v", err)
	}
	if req == nil {
		return nil, domain.NewParseError("", "request body must be an object")
	}
	if _, err := object("", body, requestKeys); err != nil {
		return nil, err
	}
	raw, ok := req["query"]
	if !ok {
		return query.MatchAll{Boost: 1}, nil
	}
	return Parse(raw, fields)
}

type parser struct {
	fields FieldAnalyzers
}

func (p parser) parse(path string, raw json.RawMessage) (query.Query, error) {
	members, err := value.ObjectFields(raw)
	if err != nil {
		return nil, domain.NewParseError(path, "expected a query object")
	}
	if len(members) != 1 {
		return nil, domain.NewParseError(path, "expected exactly one query type, got %d", len(members))
	}
	typ, body := members[0].Name, members[0].Raw
	sub := path + "." + typ

	switch typ {
	case "match_all":
		return p.matchAll(sub, body)
	case "match_none":
		if _, err := object(sub, body, nil); err != nil {
			return nil, err
		}
		return query.MatchNone{}, nil
	case "term":
		return p.term(sub, body, query.Exact, "value")
	case "prefix":
		return p.term(sub, body, query.Prefix, "value", "prefix")
	case "terms":
		return p.terms(sub, body)
	case "match":
		return p.match(sub, body)
	case "multi_match":
		return p.multiMatch(sub, body)
	case "bool":
		return p.boolQuery(sub, body)
	case "dis_max":
		return p.disMax(sub, body)
	case "function_score":
		return p.functionScore(sub, body)
	case "constant_score":
		return p.constantScore(sub, body)
	case "filtered":
		return p.filtered(sub, body)
	default:
		return nil, domain.NewParseError(path, "unknown query type %q", typ)
	}
}

func (p parser) matchAll(path string, body json.RawMessage) (query.Query, error) {
	obj, err := object(path, body, []string{"boost"})
	if err != nil {
		return nil, err
	}
	boost, err := boostOf(path, obj)
	if err != nil {
		return nil, err
	}
	return query.MatchAll{Boost: boost}, nil
}

// term handles {"field": "v"} and {"field": {"value": "v", "boost": 2}}.
func (p parser) term(path string, body json.RawMessage, m query.Matcher, valueKeys ...string) (query.Query, error) {
	field, raw, err := singleField(path, body)
	if err != nil {
		return nil, err
	}
	sub := path + "." + field

	boost := 1.0
	if isObject(raw) {
		obj, err := object(sub, raw, append([]string{"boost"}, valueKeys...))
		if err != nil {
			return nil, err
		}
		if boost, err = boostOf(sub, obj); err != nil {
			return nil, err
		}
		raw = nil
		for _, k := range valueKeys {
			if v, ok := obj[k]; ok {
				raw = v
				break
			}
		}
		if raw == nil {
			return nil, domain.NewParseError(sub, "missing %q", valueKeys[0])
		}
	}
	text, err := scalarText(sub, raw)
	if err != nil {
		return nil, err
	}
	return query.MatchTerm{Field: field, Term: text, Matcher: m, Boost: boost}, nil
}

// terms handles {"field": ["a", "b"], "boost": 1}.
func (p parser) terms(path string, body json.RawMessage) (query.Query, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, domain.NewParseError(path, "expected an object")
	}
	boost, err := boostOf(path, obj)
	if err != nil {
		return nil, err
	}
	delete(obj, "boost")
	if len(obj) != 1 {
		return nil, domain.NewParseError(path, "expected exactly one field, got %d", len(obj))
	}

	var field string
	var list []json.RawMessage
	for f, raw := range obj {
		field = f
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, domain.NewParseError(path+"."+f, "expected an array of terms")
		}
	}

	clauses := make([]query.Query, 0, len(list))
	for i, raw := range list {
		text, err := scalarText(fmt.Sprintf("%s.%s[%d]", path, field, i), raw)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, query.Term(field, text))
	}
	return query.Score(query.Or(clauses...), boost, 0), nil
}

// match handles {"field": "text"} and
// {"field": {"query": "text", "operator": "and", "boost": 2}}.
func (p parser) match(path string, body json.RawMessage) (query.Query, error) {
	field, raw, err := singleField(path, body)
	if err != nil {
		return nil, err
	}
	sub := path + "." + field

	boost, operator := 1.0, "or"
	if isObject(raw) {
		obj, err := object(sub, raw, []string{"query", "operator", "boost"})
		if err != nil {
			return nil, err
		}
		if boost, err = boostOf(sub, obj); err != nil {
			return nil, err
		}
		if op, ok := obj["operator"]; ok {
			if operator, err = stringOf(sub+".operator", op); err != nil {
				return nil, err
			}
		}
		q, found := obj["query"]
		if !found {
			return nil, domain.NewParseError(sub, "missing \"query\"")
		}
		raw = q
	}
	text, err := scalarText(sub, raw)
	if err != nil {
		return nil, err
	}
	q, err := p.fullText(sub, field, text, operator)
	if err != nil {
		return nil, err
	}
	return query.Score(q, boost, 0), nil
}

func (p parser) fullText(path, field, text, operator string) (query.Query, error) {
	var terms []string
	if a, ok := p.analyzer(field); ok {
		terms = a.Terms(text)
	} else {
		terms = []string{text}
	}

	clauses := make([]query.Query, 0, len(terms))
	for _, t := range terms {
		clauses = append(clauses, query.Term(field, t))
	}
	switch strings.ToLower(operator) {
	case "or":
		return query.Or(clauses...), nil
	case "and":
		return query.And(clauses...), nil
	default:
		return nil, domain.NewQueryError(path+".operator", "operator must be \"and\" or \"or\", got %q", operator)
	}
}

func (p parser) analyzer(field string) (*analysis.Analyzer, bool) {
	if p.fields == nil {
		return nil, false
	}
	return p.fields.FieldAnalyzer(field)
}

// multiMatch handles {"query": "text", "fields": ["title^3", "body"]}.
// Each field becomes a match query scaled by its boost; the best one wins.
func (p parser) multiMatch(path string, body json.RawMessage) (query.Query, error) {
	obj, err := object(path, body, []string{"query", "fields", "operator", "boost"})
	if err != nil {
		return nil, err
	}
	rawText, ok := obj["query"]
	if !ok {
		return nil, domain.NewParseError(path, "missing \"query\"")
	}
	text, err := scalarText(path+".query", rawText)
	if err != nil {
		return nil, err
	}
	operator := "or"
	if op, ok := obj["operator"]; ok {
		if operator, err = stringOf(path+".operator", op); err != nil {
			return nil, err
		}
	}
	boost, err := boostOf(path, obj)
	if err != nil {
		return nil, err
	}

	fields := []string{mapping.AllField}
	if raw, ok := obj["fields"]; ok {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, domain.NewParseError(path+".fields", "expected an array of field names")
		}
	}
	if len(fields) == 0 {
		return nil, domain.NewQueryError(path+".fields", "at least one field is required")
	}

	clauses := make([]query.Query, 0, len(fields))
	for i, spec := range fields {
		fpath := fmt.Sprintf("%s.fields[%d]", path, i)
		field, fieldBoost, err := fieldWithBoost(fpath, spec)
		if err != nil {
			return nil, err
		}
		q, err := p.fullText(path, field, text, operator)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, query.Score(q, fieldBoost, 0))
	}
	return query.Score(query.DisMax(clauses...), boost, 0), nil
}

func fieldWithBoost(path, spec string) (string, float64, error) {
	name, boostText, hasBoost := strings.Cut(spec, "^")
	if name == "" {
		return "", 0, domain.NewQueryError(path, "empty field name")
	}
	if !hasBoost {
		return name, 1, nil
	}
	b, err := strconv.ParseFloat(boostText, 64)
	if err != nil || b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		return "", 0, domain.NewQueryError(path, "invalid field boost %q", boostText)
	}
	return name, b, nil
}

// boolQuery builds a Bool and collapses it when it is only a conjunction or
// only a disjunction.
func (p parser) boolQuery(path string, body json.RawMessage) (query.Query, error) {
	obj, err := object(path, body, []string{"must", "must_not", "should", "filter", "minimum_should_match", "boost"})
	if err != nil {
		return nil, err
	}
	boost, err := boostOf(path, obj)
	if err != nil {
		return nil, err
	}

	clauses := make(map[string][]query.Query, 4)
	for _, key := range []string{"must", "must_not", "should", "filter"} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		qs, err := p.clauses(path+"."+key, raw)
		if err != nil {
			return nil, err
		}
		clauses[key] = qs
	}
	must, mustNot, should, filter := clauses["must"], clauses["must_not"], clauses["should"], clauses["filter"]

	msm := 0
	if len(should) > 0 {
		msm = 1
	}
	if raw, ok := obj["minimum_should_match"]; ok {
		if msm, err = minimumShouldMatch(path+".minimum_should_match", raw, len(should)); err != nil {
			return nil, err
		}
	}

	switch {
	case len(must) == 0 && len(mustNot) == 0 && len(should) == 0 && len(filter) == 0:
		return query.MatchAll{Boost: boost}, nil
	case len(must) > 0 && len(mustNot) == 0 && len(should) == 0 && len(filter) == 0:
		return query.Score(query.And(must...), boost, 0), nil
	case len(should) > 0 && len(must) == 0 && len(mustNot) == 0 && len(filter) == 0 && msm == 1:
		return query.Score(query.Or(should...), boost, 0), nil
	}
	return query.Bool{
		Must:               must,
		MustNot:            mustNot,
		Should:             should,
		Filter:             filter,
		MinimumShouldMatch: msm,
		Boost:              boost,
	}, nil
}

// clauses accepts a single query object or an array of them.
func (p parser) clauses(path string, raw json.RawMessage) ([]query.Query, error) {
	if isObject(raw) {
		q, err := p.parse(path, raw)
		if err != nil {
			return nil, err
		}
		return []query.Query{q}, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, domain.NewParseError(path, "expected a query or an array of queries")
	}
	out := make([]query.Query, 0, len(list))
	for i, item := range list {
		q, err := p.parse(fmt.Sprintf("%s[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// minimumShouldMatch accepts 2, "2", "-1", "75%" and "-25%".
func minimumShouldMatch(path string, raw json.RawMessage, should int) (int, error) {
	var spec string
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		spec = strconv.Itoa(n)
	} else if err := json.Unmarshal(raw, &spec); err != nil {
		return 0, domain.NewParseError(path, "expected an integer or a string")
	}
	spec = strings.TrimSpace(spec)

	var count int
	if pct, ok := strings.CutSuffix(spec, "%"); ok {
		v, err := strconv.Atoi(pct)
		if err != nil || v < -100 || v > 100 {
			return 0, domain.NewQueryError(path, "invalid percentage %q", spec)
		}
		count = should * abs(v) / 100
		if v < 0 {
			count = should - count
		}
	} else {
		v, err := strconv.Atoi(spec)
		if err != nil {
			return 0, domain.NewQueryError(path, "invalid value %q", spec)
		}
		count = v
		if v < 0 {
			count = should + v
		}
	}
	return min(max(count, 0), should), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (p parser) disMax(path string, body json.RawMessage) (query.Query, error) {
	obj, err := object(path, body, []string{"queries", "boost", "tie_breaker"})
	if err != nil {
		return nil, err
	}
	boost, err := boostOf(path, obj)
	if err != nil {
		return nil, err
	}
	if raw, ok := obj["tie_breaker"]; ok {
		var tb float64
		if err := json.Unmarshal(raw, &tb); err != nil {
			return nil, domain.NewParseError(path+".tie_breaker", "expected a number")
		}
		if tb != 0 {
			return nil, domain.NewQueryError(path+".tie_breaker", "non-zero tie_breaker is not supported")
		}
	}
	raw, ok := obj["queries"]
	if !ok {
		return nil, domain.NewParseError(path, "missing \"queries\"")
	}
	qs, err := p.clauses(path+".queries", raw)
	if err != nil {
		return nil, err
	}
	return query.Score(query.DisMax(qs...), boost, 0), nil
}

// functionScore handles {"query": {...}, "boost_factor": 2}.
func (p parser) functionScore(path string, body json.RawMessage) (query.Query, error) {
	obj, err := object(path, body, []string{"query", "boost_factor", "boost"})
	if err != nil {
		return nil, err
	}
	var inner query.Query = query.MatchAll{Boost: 1}
	if raw, ok := obj["query"]; ok {
		if inner, err = p.parse(path+".query", raw); err != nil {
			return nil, err
		}
	}
	mul := 1.0
	if raw, ok := obj["boost_factor"]; ok {
		if err := json.Unmarshal(raw, &mul); err != nil {
			return nil, domain.NewParseError(path+".boost_factor", "expected a number")
		}
		if mul < 0 {
			return nil, domain.NewQueryError(path+".boost_factor", "must be non-negative, got %v", mul)
		}
	}
	boost, err := boostOf(path, obj)
	if err != nil {
		return nil, err
	}
	return query.Score(query.Score(inner, mul, 0), boost, 0), nil
}

// constantScore gives every match of the filter the same score, its boost.
func (p parser) constantScore(path string, body json.RawMessage) (query.Query, error) {
	obj, err := object(path, body, []string{"filter", "query", "boost"})
	if err != nil {
		return nil, err
	}
	raw, ok := obj["filter"]
	key := "filter"
	if !ok {
		if raw, ok = obj["query"]; !ok {
			return nil, domain.NewParseError(path, "missing \"filter\"")
		}
		key = "query"
	}
	inner, err := p.parse(path+"."+key, raw)
	if err != nil {
		return nil, err
	}
	boost, err := boostOf(path, obj)
	if err != nil {
		return nil, err
	}
	return query.Score(query.Bool{Filter: []query.Query{inner}, Boost: 1}, 1, boost), nil
}

// filtered is the legacy {"query": q, "filter": f} form.
func (p parser) filtered(path string, body json.RawMessage) (query.Query, error) {
	obj, err := object(path, body, []string{"query", "filter"})
	if err != nil {
		return nil, err
	}
	var q query.Query = query.MatchAll{Boost: 1}
	if raw, ok := obj["query"]; ok {
		if q, err = p.parse(path+".query", raw); err != nil {
			return nil, err
		}
	}
	raw, ok := obj["filter"]
	if !ok {
		return q, nil
	}
	f, err := p.parse(path+".filter", raw)
	if err != nil {
		return nil, err
	}
	return query.Bool{Must: []query.Query{q}, Filter: []query.Query{f}, Boost: 1}, nil
}

// object decodes a parameter object and rejects keys outside allowed.
func object(path string, raw json.RawMessage, allowed []string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, domain.NewParseError(path, "expected an object")
	}
	var unknown []string
	for k := range obj {
		if !contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, domain.NewParseError(path, "unknown parameter %q", unknown[0])
	}
	return obj, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func singleField(path string, body json.RawMessage) (string, json.RawMessage, error) {
	members, err := value.ObjectFields(body)
	if err != nil {
		return "", nil, domain.NewParseError(path, "expected an object")
	}
	if len(members) != 1 {
		return "", nil, domain.NewParseError(path, "expected exactly one field, got %d", len(members))
	}
	return members[0].Name, members[0].Raw, nil
}

func boostOf(path string, obj map[string]json.RawMessage) (float64, error) {
	raw, ok := obj["boost"]
	if !ok {
		return 1, nil
	}
	var b float64
	if err := json.Unmarshal(raw, &b); err != nil {
		return 0, domain.NewParseError(path+".boost", "expected a number")
	}
	if b < 0 {
		return 0, domain.NewQueryError(path+".boost", "must be non-negative, got %v", b)
	}
	return b, nil
}

func stringOf(path string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", domain.NewParseError(path, "expected a string")
	}
	return s, nil
}

// scalarText renders a string, number or bool query value as text.
func scalarText(path string, raw json.RawMessage) (string, error) {
	v, err := value.FromJSON(path, raw, value.Options{})
	if err != nil {
		return "", domain.NewParseError(path, "expected a string, number or bool")
	}
	if v.Kind() == value.String {
		s, _ := v.Str()
		return s, nil
	}
	if v.IsNull() {
		return "", domain.NewParseError(path, "value must not be null")
	}
	// keep the literal spelling of numbers
	return string(bytes.TrimSpace(raw)), nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
