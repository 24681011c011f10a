package registry

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/index"
	"github.com/kailas-cloud/textdex/internal/domain/value"
)

// snapshotVersion 2 persists converted document fields next to the source.
const snapshotVersion = 2

// snapshotDTO is the JSON layout of a persisted index.
type snapshotDTO struct {
	Version   int             `json:"version"`
	Name      string          `json:"name"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	Mappings  []mappingRow    `json:"mappings"`
	Documents []documentRow   `json:"documents"`
	Aliases   []string        `json:"aliases,omitempty"`
}

type mappingRow struct {
	Type       string          `json:"type"`
	Definition json.RawMessage `json:"definition"`
}

type documentRow struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source json.RawMessage `json:"source"`
	Fields []fieldRow      `json:"fields"`
}

// fieldRow is one converted field: its value kind and the JSON form of the
// payload (an array of terms for token vectors).
type fieldRow struct {
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

func encodeSnapshot(st index.State) ([]byte, error) {
	dto := snapshotDTO{
		Version:   snapshotVersion,
		Name:      st.Name,
		Settings:  st.Settings,
		Mappings:  make([]mappingRow, len(st.Mappings)),
		Documents: make([]documentRow, len(st.Documents)),
		Aliases:   st.Aliases,
	}
	for i, m := range st.Mappings {
		dto.Mappings[i] = mappingRow{Type: m.Type, Definition: m.Definition}
	}
	for i, d := range st.Documents {
		fields, err := encodeFields(d.Fields)
		if err != nil {
			return nil, fmt.Errorf("marshal snapshot %s document %s: %w", st.Name, d.ID, err)
		}
		dto.Documents[i] = documentRow{ID: d.ID, Type: d.Type, Source: d.Source, Fields: fields}
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot %s: %w", st.Name, err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (index.State, error) {
	var dto snapshotDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return index.State{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if dto.Version != snapshotVersion {
		return index.State{}, fmt.Errorf("unsupported snapshot version %d", dto.Version)
	}

	st := index.State{
		Name:      dto.Name,
		Settings:  dto.Settings,
		Mappings:  make([]index.MappingState, len(dto.Mappings)),
		Documents: make([]index.DocumentState, len(dto.Documents)),
		Aliases:   dto.Aliases,
	}
	for i, m := range dto.Mappings {
		st.Mappings[i] = index.MappingState{Type: m.Type, Definition: m.Definition}
	}
	for i, d := range dto.Documents {
		fields, err := decodeFields(d.Fields)
		if err != nil {
			return index.State{}, fmt.Errorf("unmarshal snapshot document %s: %w", d.ID, err)
		}
		st.Documents[i] = index.DocumentState{ID: d.ID, Type: d.Type, Source: d.Source, Fields: fields}
	}
	return st, nil
}

func encodeFields(fields []document.Field) ([]fieldRow, error) {
	rows := make([]fieldRow, len(fields))
	for i, f := range fields {
		row := fieldRow{Name: f.Name, Kind: f.Value.Kind().String()}
		var payload any
		switch f.Value.Kind() {
		case value.Null:
		case value.TokenVector:
			terms, _ := f.Value.Terms()
			if terms == nil {
				terms = []string{}
			}
			payload = terms
		default:
			payload = f.Value
		}
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			row.Value = raw
		}
		rows[i] = row
	}
	return rows, nil
}

func decodeFields(rows []fieldRow) ([]document.Field, error) {
	fields := make([]document.Field, len(rows))
	for i, row := range rows {
		v, err := decodeValue(row)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", row.Name, err)
		}
		fields[i] = document.Field{Name: row.Name, Value: v}
	}
	return fields, nil
}

func decodeValue(row fieldRow) (value.Value, error) {
	kind, ok := value.ParseKind(row.Kind)
	if !ok {
		return value.Value{}, fmt.Errorf("unknown value kind %q", row.Kind)
	}
	if kind == value.Null {
		return value.NewNull(), nil
	}
	if len(row.Value) == 0 {
		return value.Value{}, fmt.Errorf("missing %s payload", kind)
	}

	var err error
	switch kind {
	case value.String:
		var s string
		if err = json.Unmarshal(row.Value, &s); err == nil {
			return value.NewString(s), nil
		}
	case value.TokenVector:
		var terms []string
		if err = json.Unmarshal(row.Value, &terms); err == nil {
			return value.NewTokenVector(terms), nil
		}
	case value.Boolean:
		var b bool
		if err = json.Unmarshal(row.Value, &b); err == nil {
			return value.NewBoolean(b), nil
		}
	case value.Int64:
		var n int64
		if err = json.Unmarshal(row.Value, &n); err == nil {
			return value.NewInt64(n), nil
		}
	case value.UInt64:
		var n uint64
		if err = json.Unmarshal(row.Value, &n); err == nil {
			return value.NewUInt64(n), nil
		}
	case value.Float64:
		var f float64
		if err = json.Unmarshal(row.Value, &f); err == nil {
			return value.NewFloat64(f), nil
		}
	}
	return value.Value{}, fmt.Errorf("decode %s: %w", kind, err)
}
