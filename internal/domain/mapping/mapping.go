// Package mapping declares how document fields are typed and analyzed.
package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/value"
)

// Mapping is the immutable set of field declarations for one document type.
// Fields keep their declaration order.
type Mapping struct {
	typeName string
	fields   []FieldMapping
	byName   map[string]int
}

// New validates and creates a Mapping.
func New(typeName string, fields []FieldMapping) (*Mapping, error) {
	if typeName == "" {
		return nil, fmt.Errorf("%w: mapping type name is required", domain.ErrInvalidName)
	}
	if typeName[0] == '_' {
		return nil, fmt.Errorf("%w: mapping type %q must not start with '_'", domain.ErrInvalidName, typeName)
	}
	m := &Mapping{
		typeName: typeName,
		fields:   make([]FieldMapping, 0, len(fields)),
		byName:   make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if err := validateFieldName(f.name); err != nil {
			return nil, err
		}
		if _, dup := m.byName[f.name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", domain.ErrInvalidSchema, f.name)
		}
		m.byName[f.name] = len(m.fields)
		m.fields = append(m.fields, f)
	}
	return m, nil
}

// Parse decodes a put-mapping body. Accepted shapes:
//
//	{"<type>": {"properties": {...}}}
//	{"properties": {...}}
//	{"<field>": {...}, ...}
//
// Keys beside "properties" (such as "_source") are ignored.
func Parse(typeName string, raw json.RawMessage, analyzers AnalyzerLookup, defaultAnalyzer string) (*Mapping, error) {
	props, err := properties(typeName, raw)
	if err != nil {
		return nil, err
	}
	members, err := value.ObjectFields(props)
	if err != nil {
		return nil, fmt.Errorf("%w: properties: %w", domain.ErrInvalidSchema, err)
	}

	fields := make([]FieldMapping, 0, len(members))
	for _, m := range members {
		f, err := parseField(m.Name, m.Raw, analyzers, defaultAnalyzer)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return New(typeName, fields)
}

func properties(typeName string, raw json.RawMessage) (json.RawMessage, error) {
	top, err := value.ObjectFields(raw)
	if err != nil {
		if errors.Is(err, value.ErrNotObject) {
			return nil, fmt.Errorf("%w: mapping must be a JSON object", domain.ErrInvalidSchema)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	if len(top) == 1 && top[0].Name == typeName {
		inner, err := value.ObjectFields(top[0].Raw)
		if err == nil {
			if p, ok := member(inner, "properties"); ok {
				return p, nil
			}
		}
	}
	if p, ok := member(top, "properties"); ok {
		return p, nil
	}
	return raw, nil
}

func member(ms []value.Member, name string) (json.RawMessage, bool) {
	for _, m := range ms {
		if m.Name == name {
			return m.Raw, true
		}
	}
	return nil, false
}

// TypeName returns the document type this mapping applies to.
func (m *Mapping) TypeName() string { return m.typeName }

// Field returns the declaration of name.
func (m *Mapping) Field(name string) (FieldMapping, bool) {
	i, ok := m.byName[name]
	if !ok {
		return FieldMapping{}, false
	}
	return m.fields[i], true
}

// Fields returns the declarations in order.
func (m *Mapping) Fields() []FieldMapping {
	out := make([]FieldMapping, len(m.fields))
	copy(out, m.fields)
	return out
}

// Position returns the declaration index of a field, or -1.
func (m *Mapping) Position(name string) int {
	if i, ok := m.byName[name]; ok {
		return i
	}
	return -1
}

// MarshalJSON renders {"properties": {...}} with fields in declaration order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"properties":{`)
	for i, f := range m.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		def, err := json.Marshal(f.def())
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(def)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}
