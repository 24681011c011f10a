// Package value holds the typed field values stored in documents.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/textdex/internal/domain"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	Null Kind = iota
	String
	TokenVector
	Boolean
	Int64
	UInt64
	Float64
)

var kindNames = [...]string{"null", "string", "token_vector", "boolean", "int64", "uint64", "float64"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Value is an immutable tagged union of the stored field types.
// The zero Value is Null.
type Value struct {
	kind  Kind
	str   string
	terms []string
	b     bool
	i     int64
	u     uint64
	f     float64
}

// NewNull returns the Null value.
func NewNull() Value { return Value{} }

// NewString wraps a raw string.
func NewString(s string) Value { return Value{kind: String, str: s} }

// NewTokenVector wraps analyzed terms. The slice is copied.
func NewTokenVector(terms []string) Value {
	cp := make([]string, len(terms))
	copy(cp, terms)
	return Value{kind: TokenVector, terms: cp}
}

// NewBoolean wraps a bool.
func NewBoolean(b bool) Value { return Value{kind: Boolean, b: b} }

// NewInt64 wraps a signed integer.
func NewInt64(i int64) Value { return Value{kind: Int64, i: i} }

// NewUInt64 wraps an unsigned integer.
func NewUInt64(u uint64) Value { return Value{kind: UInt64, u: u} }

// NewFloat64 wraps a float.
func NewFloat64(f float64) Value { return Value{kind: Float64, f: f} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == Null }

// Str returns the string payload of a String value.
func (v Value) Str() (string, bool) { return v.str, v.kind == String }

// Terms returns a copy of the terms of a TokenVector value.
func (v Value) Terms() ([]string, bool) {
	if v.kind != TokenVector {
		return nil, false
	}
	cp := make([]string, len(v.terms))
	copy(cp, v.terms)
	return cp, true
}

// Bool returns the payload of a Boolean value.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == Boolean }

// Int returns the payload of an Int64 value.
func (v Value) Int() (int64, bool) { return v.i, v.kind == Int64 }

// Uint returns the payload of a UInt64 value.
func (v Value) Uint() (uint64, bool) { return v.u, v.kind == UInt64 }

// Float returns the payload of a Float64 value.
func (v Value) Float() (float64, bool) { return v.f, v.kind == Float64 }

// Text renders scalar values in their canonical text form, the same form
// an analyzer sees when a number or bool is indexed into a text field.
// TokenVector and Null have no text form.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case String:
		return v.str, true
	case Boolean:
		return strconv.FormatBool(v.b), true
	case Int64:
		return strconv.FormatInt(v.i, 10), true
	case UInt64:
		return strconv.FormatUint(v.u, 10), true
	case Float64:
		return strconv.FormatFloat(v.f, 'g', -1, 64), true
	default:
		return "", false
	}
}

// MatchTerm reports whether the value contains term.
// TokenVectors compare each analyzed term, strings compare the whole string,
// other scalars compare their canonical text form. With prefix set, a
// candidate matches when it starts with term.
func (v Value) MatchTerm(term string, prefix bool) bool {
	match := func(candidate string) bool {
		if prefix {
			return strings.HasPrefix(candidate, term)
		}
		return candidate == term
	}
	if v.kind == TokenVector {
		for _, t := range v.terms {
			if match(t) {
				return true
			}
		}
		return false
	}
	text, ok := v.Text()
	return ok && match(text)
}

// MarshalJSON renders scalars as plain JSON. TokenVector is an internal,
// search-only form and cannot be rendered.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(v.str)
	case Boolean:
		return json.Marshal(v.b)
	case Int64:
		return json.Marshal(v.i)
	case UInt64:
		return json.Marshal(v.u)
	case Float64:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("value: float %v has no JSON form", v.f)
		}
		return json.Marshal(v.f)
	default:
		return nil, fmt.Errorf("value: %s has no JSON form", v.kind)
	}
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case String:
		return v.str == o.str
	case Boolean:
		return v.b == o.b
	case Int64:
		return v.i == o.i
	case UInt64:
		return v.u == o.u
	case Float64:
		return v.f == o.f
	case TokenVector:
		if len(v.terms) != len(o.terms) {
			return false
		}
		for i := range v.terms {
			if v.terms[i] != o.terms[i] {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	if v.kind == TokenVector {
		return fmt.Sprintf("%v", v.terms)
	}
	if v.kind == Null {
		return "null"
	}
	s, _ := v.Text()
	return s
}

// Options controls JSON conversion.
type Options struct {
	// Lenient turns arrays and objects into Null instead of failing.
	Lenient bool
}

// FromJSON converts one raw JSON value.
// Numbers become Int64 when they fit, then UInt64, then Float64.
// Arrays and objects fail with ErrConversion unless opts.Lenient is set.
func FromJSON(field string, raw json.RawMessage, opts Options) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, domain.NewConversionError(field, "empty value")
	}
	switch raw[0] {
	case '[', '{':
		if opts.Lenient {
			return NewNull(), nil
		}
		return Value{}, domain.NewConversionError(field, "arrays and objects are not supported")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return Value{}, domain.NewConversionError(field, err.Error())
	}
	return FromAny(field, x, opts)
}

// FromAny converts a value decoded with json.Decoder.UseNumber.
func FromAny(field string, x any, opts Options) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NewNull(), nil
	case string:
		return NewString(t), nil
	case bool:
		return NewBoolean(t), nil
	case json.Number:
		return fromNumber(field, string(t))
	case float64:
		return NewFloat64(t), nil
	case []any, map[string]any:
		if opts.Lenient {
			return NewNull(), nil
		}
		return Value{}, domain.NewConversionError(field, "arrays and objects are not supported")
	default:
		return Value{}, domain.NewConversionError(field, fmt.Sprintf("unsupported type %T", x))
	}
}

func fromNumber(field, s string) (Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt64(i), nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return NewUInt64(u), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, domain.NewConversionError(field, fmt.Sprintf("invalid number %q", s))
	}
	return NewFloat64(f), nil
}
