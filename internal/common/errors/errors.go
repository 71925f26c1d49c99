// Package errors provides the planner's error taxonomy and its mappings onto
// HTTP responses and BPMN job failures.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Caller errors, always surfaced.
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	// Oracle errors, recovered locally by the deterministic fallbacks.
	ErrCodeOracleUnavailable ErrorCode = "ORACLE_UNAVAILABLE"
	ErrCodeOracleMalformed   ErrorCode = "ORACLE_MALFORMED"
	ErrCodeOracleTimeout     ErrorCode = "ORACLE_TIMEOUT"

	// Lookup by an ID that is not in the catalog. Skipped, never surfaced.
	ErrCodeUnknownID ErrorCode = "UNKNOWN_ID"

	ErrCodeLookupFailed      ErrorCode = "LOOKUP_FAILED"
	ErrCodeStoreFailed       ErrorCode = "STORE_FAILED"
	ErrCodeCatalogLoadFailed ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeWorkflowEngine    ErrorCode = "WORKFLOW_ENGINE_ERROR"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports a bad enum value or a missing required field.
func NewInvalidInputError(field, details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false).
		WithMetadata("field", field)
}

// NewSessionNotFoundError reports a swipe request for a user without a session.
func NewSessionNotFoundError(user string) *StandardError {
	return newError(ErrCodeSessionNotFound, "No swipe session for user",
		fmt.Sprintf("user: %s", user), false)
}

func NewOracleUnavailableError(err error) *StandardError {
	return newError(ErrCodeOracleUnavailable, "Recommendation oracle unavailable", errDetails(err), true)
}

func NewOracleMalformedError(details string) *StandardError {
	return newError(ErrCodeOracleMalformed, "Recommendation oracle returned an unusable response", details, false)
}

func NewOracleTimeoutError() *StandardError {
	return newError(ErrCodeOracleTimeout, "Recommendation oracle timed out", "", true)
}

func NewUnknownIDError(category, id string) *StandardError {
	return newError(ErrCodeUnknownID, "Unknown listing id",
		fmt.Sprintf("category: %s, id: %s", category, id), false)
}

func NewLookupFailedError(service string, err error) *StandardError {
	return newError(ErrCodeLookupFailed, "Auxiliary lookup failed",
		fmt.Sprintf("service: %s, error: %s", service, errDetails(err)), true)
}

func NewStoreFailedError(op string, err error) *StandardError {
	return newError(ErrCodeStoreFailed, "State store operation failed",
		fmt.Sprintf("op: %s, error: %s", op, errDetails(err)), true)
}

func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Failed to load listing catalog",
		fmt.Sprintf("source: %s, error: %s", source, errDetails(err)), true)
}

// NewWorkflowEngineError reports a failed Zeebe command.
func NewWorkflowEngineError(op string, err error, retryable bool) *StandardError {
	return newError(ErrCodeWorkflowEngine, "Workflow engine command failed",
		fmt.Sprintf("op: %s, error: %s", op, errDetails(err)), retryable)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Inspection helpers
// ==========================

// AsStandard unwraps err to a *StandardError when there is one in its chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

func IsInvalidInput(err error) bool {
	return CodeOf(err) == ErrCodeInvalidInput
}

// IsOracleFailure reports whether err belongs to the locally recovered oracle family.
func IsOracleFailure(err error) bool {
	switch CodeOf(err) {
	case ErrCodeOracleUnavailable, ErrCodeOracleMalformed, ErrCodeOracleTimeout:
		return true
	}
	return false
}

// HTTPStatus maps an error code onto the status the API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeSessionNotFound, ErrCodeUnknownID:
		return http.StatusNotFound
	case ErrCodeOracleUnavailable, ErrCodeOracleMalformed, ErrCodeLookupFailed:
		return http.StatusBadGateway
	case ErrCodeOracleTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeWorkflowEngine:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "ORACLE"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "SESSION"):
		return "STATE"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "LOOKUP"):
		return "LOOKUP"
	case strings.HasPrefix(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
