package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/logger"
)

// Error types reported in the body of failed responses.
const (
	ErrTypeParse         = "parse_exception"
	ErrTypeQuery         = "query_parsing_exception"
	ErrTypeMapperParsing = "mapper_parsing_exception"
	ErrTypeInvalidName   = "invalid_index_name_exception"
	ErrTypeIllegalArg    = "illegal_argument_exception"
	ErrTypeIndexMissing  = "index_not_found_exception"
	ErrTypeTypeMissing   = "type_missing_exception"
	ErrTypeDocMissing    = "document_missing_exception"
	ErrTypeAliasMissing  = "alias_missing_exception"
	ErrTypeNotFound      = "resource_not_found_exception"
	ErrTypeConflict      = "version_conflict_engine_exception"
	ErrTypeIndexExists   = "index_already_exists_exception"
	ErrTypeUnauthorized  = "security_exception"
	ErrTypeInternal      = "internal_error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  ErrorCause `json:"error"`
	Status int        `json:"status"`
}

// ErrorCause describes why a request failed.
type ErrorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// errorRule maps a domain sentinel to an HTTP status and error type.
type errorRule struct {
	sentinel error
	status   int
	errType  string
}

// errorRules is checked in order: specific sentinels before the generic ones they wrap.
var errorRules = []errorRule{
	{domain.ErrParse, http.StatusBadRequest, ErrTypeParse},
	{domain.ErrQuery, http.StatusBadRequest, ErrTypeQuery},
	{domain.ErrConversion, http.StatusBadRequest, ErrTypeMapperParsing},
	{domain.ErrInvalidName, http.StatusBadRequest, ErrTypeInvalidName},
	{domain.ErrInvalidSchema, http.StatusBadRequest, ErrTypeMapperParsing},
	{domain.ErrInvalidAnalyzer, http.StatusBadRequest, ErrTypeIllegalArg},
	{domain.ErrIndexNotFound, http.StatusNotFound, ErrTypeIndexMissing},
	{domain.ErrMappingNotFound, http.StatusNotFound, ErrTypeTypeMissing},
	{domain.ErrDocumentNotFound, http.StatusNotFound, ErrTypeDocMissing},
	{domain.ErrAliasNotFound, http.StatusNotFound, ErrTypeAliasMissing},
	{domain.ErrNotFound, http.StatusNotFound, ErrTypeNotFound},
	{domain.ErrDocumentExists, http.StatusConflict, ErrTypeConflict},
	{domain.ErrAlreadyExists, http.StatusBadRequest, ErrTypeIndexExists},
}

// classify returns the status and error type of err. ok is false for errors
// that are not domain errors.
func classify(err error) (status int, errType string, ok bool) {
	for _, rule := range errorRules {
		if errors.Is(err, rule.sentinel) {
			return rule.status, rule.errType, true
		}
	}
	return http.StatusInternalServerError, ErrTypeInternal, false
}

// errorCause describes err for a client. Domain errors carry request-derived
// text only, so their message is returned as is.
func errorCause(err error) (int, ErrorCause) {
	status, errType, ok := classify(err)
	if !ok {
		return status, ErrorCause{Type: errType, Reason: "internal error"}
	}
	return status, ErrorCause{Type: errType, Reason: err.Error()}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, cause := errorCause(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, status, cause.Type, cause.Reason)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, reason string) {
	writeJSON(w, status, ErrorResponse{
		Error:  ErrorCause{Type: errType, Reason: reason},
		Status: status,
	})
}
