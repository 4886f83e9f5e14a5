// Package errors provides standardized error handling for query resolution.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeStorageUnavailable       ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeMalformedQuery           ErrorCode = "MALFORMED_QUERY"
	ErrCodeAggregationMismatch      ErrorCode = "AGGREGATION_MISMATCH"
	ErrCodeInvalidFilterFormat      ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeNLUUnavailable           ErrorCode = "NLU_UNAVAILABLE"
	ErrCodeNLUTimeout               ErrorCode = "NLU_TIMEOUT"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewStorageUnavailableError creates a retryable storage error. The retry
// belongs to the caller's policy, not the query core.
func NewStorageUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageUnavailable,
		Message:   "Storage backend unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryKind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryKind: %s", queryKind),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedQueryError creates a non-retryable internal-contract error.
// Predicate and parameter counts disagreeing is a programming error, never a
// user problem; internal query text must not leak to the caller.
func NewMalformedQueryError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedQuery,
		Message:   "Internal query assembly error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAggregationMismatchError creates a non-retryable invariant error raised
// when grouped item columns split to unequal lengths.
func NewAggregationMismatchError(orderID int64, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAggregationMismatch,
		Message:   "Joined row aggregation inconsistency",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"orderId": orderID},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNLUUnavailableError creates a retryable NLU transport error.
func NewNLUUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNLUUnavailable,
		Message:   "Text-understanding service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNLUTimeoutError creates a retryable NLU timeout error.
func NewNLUTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNLUTimeout,
		Message:   "Text-understanding service timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	if se, ok := err.(*StandardError); ok {
		return se.Retryable
	}
	return false
}
