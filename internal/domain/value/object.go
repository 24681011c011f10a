package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned by ObjectFields for JSON that is not an object.
var ErrNotObject = errors.New("not a JSON object")

// Member is one key of a JSON object with its undecoded value.
type Member struct {
	Name string
	Raw  json.RawMessage
}

// ObjectFields splits a JSON object into its members in source order.
// Duplicate keys are rejected.
func ObjectFields(raw []byte) ([]Member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	var out []Member
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate key %q", name)
		}
		seen[name] = struct{}{}

		var m json.RawMessage
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("key %q: %w", name, err)
		}
		out = append(out, Member{Name: name, Raw: m})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after object")
	}
	return out, nil
}
