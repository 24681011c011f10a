package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/analysis"
	"github.com/kailas-cloud/textdex/internal/domain/value"
)

// FieldType is the semantic type of a mapped field.
type FieldType string

// Field types.
const (
	Text        FieldType = "text"
	Boolean     FieldType = "boolean"
	Integer     FieldType = "integer"
	Float       FieldType = "float"
	Passthrough FieldType = "passthrough"
)

// IndexMode mirrors the "index" option of a field definition.
type IndexMode string

// Index modes.
const (
	Analyzed    IndexMode = "analyzed"
	NotAnalyzed IndexMode = "not_analyzed"
	NotIndexed  IndexMode = "no"
)

// AllField is the synthesized full-text field present in every document.
const AllField = "_all"

// FieldMapping is an immutable field declaration.
type FieldMapping struct {
	name         string
	fieldType    FieldType
	declaredType string
	analyzerName string
	analyzer     *analysis.Analyzer
	includeInAll bool
	index        IndexMode
}

// Name returns the field name.
func (f FieldMapping) Name() string { return f.name }

// Type returns the semantic field type.
func (f FieldMapping) Type() FieldType { return f.fieldType }

// Analyzer returns the analyzer of a text field.
func (f FieldMapping) Analyzer() (*analysis.Analyzer, bool) {
	return f.analyzer, f.analyzer != nil
}

// AnalyzerName returns the analyzer name of a text field.
func (f FieldMapping) AnalyzerName() string { return f.analyzerName }

// IncludeInAll reports whether the field's tokens are copied into _all.
func (f FieldMapping) IncludeInAll() bool { return f.includeInAll }

// Indexed reports whether the field is stored at all.
func (f FieldMapping) Indexed() bool { return f.index != NotIndexed }

// NewText creates an analyzed text field.
func NewText(name, analyzerName string, a *analysis.Analyzer, includeInAll bool) FieldMapping {
	return FieldMapping{
		name: name, fieldType: Text, declaredType: "string",
		analyzerName: analyzerName, analyzer: a,
		includeInAll: includeInAll, index: Analyzed,
	}
}

// NewScalar creates a non-text field of the given type.
func NewScalar(name string, ft FieldType, includeInAll bool) FieldMapping {
	declared := string(ft)
	if ft == Passthrough {
		declared = "string"
	}
	return FieldMapping{
		name: name, fieldType: ft, declaredType: declared,
		includeInAll: includeInAll, index: NotAnalyzed,
	}
}

// ProcessValue converts one raw JSON field value.
// It returns ok=false for non-indexed fields.
func (f FieldMapping) ProcessValue(raw json.RawMessage, opts value.Options) (value.Value, bool, error) {
	if !f.Indexed() {
		return value.Value{}, false, nil
	}
	if f.fieldType != Text || f.analyzer == nil {
		v, err := value.FromJSON(f.name, raw, opts)
		return v, err == nil, err
	}

	v, err := value.FromJSON(f.name, raw, opts)
	if err != nil {
		return value.Value{}, false, err
	}
	text, ok := v.Text()
	if !ok {
		return v, true, nil
	}
	if v.Kind() != value.String {
		// numbers keep their literal spelling
		text = string(bytes.TrimSpace(raw))
	}
	return value.NewTokenVector(f.analyzer.Terms(text)), true, nil
}

// fieldDef is the JSON shape of one field declaration.
type fieldDef struct {
	Type         string          `json:"type"`
	Analyzer     string          `json:"analyzer,omitempty"`
	IncludeInAll *bool           `json:"include_in_all,omitempty"`
	Index        indexOption     `json:"index,omitempty"`
	Properties   json.RawMessage `json:"properties,omitempty"`
}

// indexOption accepts both "index": "no" and "index": false.
type indexOption string

func (o *indexOption) UnmarshalJSON(b []byte) error {
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		if flag {
			*o = indexOption(Analyzed)
		} else {
			*o = indexOption(NotIndexed)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("index must be a string or bool")
	}
	*o = indexOption(s)
	return nil
}

// AnalyzerLookup resolves analyzer names.
type AnalyzerLookup interface {
	Lookup(name string) (*analysis.Analyzer, bool)
}

func parseField(name string, raw json.RawMessage, analyzers AnalyzerLookup, defaultAnalyzer string) (FieldMapping, error) {
	if err := validateFieldName(name); err != nil {
		return FieldMapping{}, err
	}

	var def fieldDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return FieldMapping{}, fmt.Errorf("%w: field %q: %w", domain.ErrInvalidSchema, name, err)
	}
	if len(def.Properties) > 0 {
		return FieldMapping{}, fmt.Errorf("%w: field %q: object fields are not supported", domain.ErrInvalidSchema, name)
	}
	if def.Type == "" {
		return FieldMapping{}, fmt.Errorf("%w: field %q: type is required", domain.ErrInvalidSchema, name)
	}

	f := FieldMapping{
		name:         name,
		declaredType: def.Type,
		fieldType:    fieldTypeOf(def.Type),
		includeInAll: true,
		index:        Analyzed,
	}
	if def.IncludeInAll != nil {
		f.includeInAll = *def.IncludeInAll
	}

	switch IndexMode(def.Index) {
	case "", Analyzed:
	case NotAnalyzed:
		f.index = NotAnalyzed
	case NotIndexed:
		f.index = NotIndexed
	default:
		return FieldMapping{}, fmt.Errorf("%w: field %q: unknown index mode %q", domain.ErrInvalidSchema, name, def.Index)
	}

	if f.fieldType == Text && f.index == NotAnalyzed {
		f.fieldType = Passthrough
	}
	if f.fieldType != Text {
		if def.Analyzer != "" {
			return FieldMapping{}, fmt.Errorf("%w: field %q: analyzer set on non-text field", domain.ErrInvalidSchema, name)
		}
		if f.index == Analyzed {
			f.index = NotAnalyzed
		}
		return f, nil
	}

	f.analyzerName = def.Analyzer
	if f.analyzerName == "" {
		f.analyzerName = defaultAnalyzer
	}
	a, ok := analyzers.Lookup(f.analyzerName)
	if !ok {
		return FieldMapping{}, fmt.Errorf("%w: field %q: unknown analyzer %q", domain.ErrInvalidAnalyzer, name, f.analyzerName)
	}
	f.analyzer = a
	return f, nil
}

func fieldTypeOf(declared string) FieldType {
	switch strings.ToLower(declared) {
	case "string", "text":
		return Text
	case "keyword":
		return Passthrough
	case "integer", "long", "short", "byte":
		return Integer
	case "float", "double", "half_float":
		return Float
	case "boolean":
		return Boolean
	default:
		return Passthrough
	}
}

func validateFieldName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: field name is required", domain.ErrInvalidSchema)
	case name == AllField:
		return fmt.Errorf("%w: field name %q is reserved", domain.ErrInvalidSchema, name)
	case strings.HasPrefix(name, "_"):
		return fmt.Errorf("%w: field name %q must not start with '_'", domain.ErrInvalidSchema, name)
	}
	return nil
}

func (f FieldMapping) def() fieldDef {
	d := fieldDef{Type: f.declaredType}
	if f.fieldType == Text {
		d.Analyzer = f.analyzerName
	}
	if !f.includeInAll {
		no := false
		d.IncludeInAll = &no
	}
	switch {
	case f.index == NotIndexed:
		d.Index = indexOption(NotIndexed)
	case f.fieldType == Passthrough && fieldTypeOf(f.declaredType) == Text:
		d.Index = indexOption(NotAnalyzed)
	}
	return d
}
