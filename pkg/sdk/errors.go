package textdex

import "github.com/kailas-cloud/textdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrInvalidSchema    = domain.ErrInvalidSchema
	ErrInvalidName      = domain.ErrInvalidName
	ErrInvalidAnalyzer  = domain.ErrInvalidAnalyzer
	ErrParse            = domain.ErrParse
	ErrQuery            = domain.ErrQuery
	ErrConversion       = domain.ErrConversion
	ErrIndexNotFound    = domain.ErrIndexNotFound
	ErrMappingNotFound  = domain.ErrMappingNotFound
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrAliasNotFound    = domain.ErrAliasNotFound
	ErrIndexExists      = domain.ErrIndexExists
	ErrDocumentExists   = domain.ErrDocumentExists
)
