// Package document converts raw JSON records into analyzed documents.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/mapping"
	"github.com/kailas-cloud/textdex/internal/domain/value"
)

// MaxIDLength is the maximum document id length in bytes.
const MaxIDLength = 512

// Field is one converted document field.
type Field struct {
	Name  string
	Value value.Value
}

// Document is an immutable analyzed record.
// Fields keep source order and always end with _all.
type Document struct {
	id       string
	typeName string
	source   json.RawMessage
	fields   []Field
	byName   map[string]int
}

// New converts a JSON object into a Document using the mapping in effect.
//
// Declared fields go through their FieldMapping; undeclared fields are stored
// with plain JSON conversion. The _all field concatenates the token vectors of
// every declared field marked include_in_all, in declaration order. A body
// field literally named _all is rejected.
func New(id, typeName string, source json.RawMessage, m *mapping.Mapping, opts value.Options) (*Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	members, err := value.ObjectFields(source)
	if err != nil {
		if errors.Is(err, value.ErrNotObject) {
			return nil, fmt.Errorf("%w: document body must be a JSON object", domain.ErrParse)
		}
		return nil, fmt.Errorf("%w: document body: %w", domain.ErrParse, err)
	}

	d := &Document{
		id:       id,
		typeName: typeName,
		source:   compact(source),
		fields:   make([]Field, 0, len(members)+1),
		byName:   make(map[string]int, len(members)+1),
	}

	allParts := make([][]string, len(m.Fields()))
	for _, mem := range members {
		if mem.Name == mapping.AllField {
			return nil, domain.NewConversionError(mem.Name, "field name is reserved")
		}

		fm, declared := m.Field(mem.Name)
		if !declared {
			v, err := value.FromJSON(mem.Name, mem.Raw, opts)
			if err != nil {
				return nil, err
			}
			d.add(mem.Name, v)
			continue
		}

		v, ok, err := fm.ProcessValue(mem.Raw, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		d.add(mem.Name, v)
		if terms, isVec := v.Terms(); isVec && fm.IncludeInAll() {
			allParts[m.Position(mem.Name)] = terms
		}
	}

	var all []string
	for _, part := range allParts {
		all = append(all, part...)
	}
	d.add(mapping.AllField, value.NewTokenVector(all))
	return d, nil
}

// Reconstruct rebuilds a Document from fields converted earlier, without
// running any mapping. Used to hydrate persisted documents.
func Reconstruct(id, typeName string, source json.RawMessage, fields []Field) (*Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	d := &Document{
		id:       id,
		typeName: typeName,
		source:   compact(source),
		fields:   make([]Field, 0, len(fields)),
		byName:   make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := d.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: document %s: duplicate field %q", domain.ErrInvalidSchema, id, f.Name)
		}
		d.add(f.Name, f.Value)
	}
	if _, ok := d.byName[mapping.AllField]; !ok {
		return nil, fmt.Errorf("%w: document %s: missing %s", domain.ErrInvalidSchema, id, mapping.AllField)
	}
	return d, nil
}

// ValidateID checks a document id.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidName)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: document id too long (max %d)", domain.ErrInvalidName, MaxIDLength)
	}
	return nil
}

func (d *Document) add(name string, v value.Value) {
	d.byName[name] = len(d.fields)
	d.fields = append(d.fields, Field{Name: name, Value: v})
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		cp := make(json.RawMessage, len(raw))
		copy(cp, raw)
		return cp
	}
	return buf.Bytes()
}

// ID returns the document id.
func (d *Document) ID() string { return d.id }

// Type returns the mapping type the document was indexed under.
func (d *Document) Type() string { return d.typeName }

// Source returns the original JSON body.
func (d *Document) Source() json.RawMessage { return d.source }

// Field returns the stored value of name.
func (d *Document) Field(name string) (value.Value, bool) {
	i, ok := d.byName[name]
	if !ok {
		return value.Value{}, false
	}
	return d.fields[i].Value, true
}

// Fields returns all stored fields in order, _all last.
func (d *Document) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}
