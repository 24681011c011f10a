package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid mapping or settings definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidName signals an index, type or alias name that cannot be used.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidAnalyzer signals an unknown or malformed analyzer definition.
	ErrInvalidAnalyzer = errors.New("invalid analyzer")

	// ErrParse signals malformed JSON or an unrecognized query DSL shape.
	ErrParse = errors.New("parse error")
	// ErrQuery signals a recognized but semantically invalid query.
	ErrQuery = errors.New("query error")
	// ErrConversion signals a document field that cannot be converted to a value.
	ErrConversion = errors.New("conversion error")

	ErrIndexNotFound    = fmt.Errorf("index %w", ErrNotFound)
	ErrMappingNotFound  = fmt.Errorf("mapping %w", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)
	ErrAliasNotFound    = fmt.Errorf("alias %w", ErrNotFound)

	ErrIndexExists    = fmt.Errorf("index %w", ErrAlreadyExists)
	ErrDocumentExists = fmt.Errorf("document %w", ErrAlreadyExists)
)

// ParseError wraps ErrParse with the location of the offending element.
type ParseError struct {
	Path string
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrParse.Error(), e.Msg)
	}
	return fmt.Sprintf("%s at %s: %s", ErrParse.Error(), e.Path, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NewParseError creates a parse error for the given DSL path.
func NewParseError(path, format string, args ...any) error {
	return &ParseError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// QueryError wraps ErrQuery with the location of the offending clause.
type QueryError struct {
	Path string
	Msg  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrQuery.Error(), e.Path, e.Msg)
}

func (e *QueryError) Unwrap() error { return ErrQuery }

// NewQueryError creates a query error for the given DSL path.
func NewQueryError(path, format string, args ...any) error {
	return &QueryError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// ConversionError wraps ErrConversion with the rejected field.
type ConversionError struct {
	Field  string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrConversion.Error(), e.Field, e.Reason)
}

func (e *ConversionError) Unwrap() error { return ErrConversion }

// NewConversionError creates a conversion error for a document field.
func NewConversionError(field, reason string) error {
	return &ConversionError{Field: field, Reason: reason}
}
