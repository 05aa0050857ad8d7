package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a service failure.
type ErrorType string

const (
	// ErrorTypeNotFound marks absence of an entity in the store. It is a
	// normal outcome, never logged as an error.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation marks rejected caller input.
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict marks a write rejected by a uniqueness constraint.
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeDatabase marks a graph-store connection or transaction
	// failure. Reads may be retried by an outer layer; writes must not be.
	ErrorTypeDatabase ErrorType = "DATABASE"

	// ErrorTypeUnauthorized marks a failed admin-key check.
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeRateLimit marks a throttled operation.
	ErrorTypeRateLimit ErrorType = "RATE_LIMIT"

	// ErrorTypeUnavailable marks a dependency that is not reachable.
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"

	// ErrorTypeInternal marks everything else.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError is the error value returned by the service layer. Internal query
// text is never placed in Message; it belongs in the wrapped cause, which is
// logged but not serialized.
type AppError struct {
	Type       ErrorType
	Message    string
	Cause      error
	HTTPStatus int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewNotFoundError reports that the named resource does not exist.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewValidationError reports rejected input.
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewConflictError reports a write that collided with an existing entity.
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDatabaseError reports a store failure. message describes the operation,
// not the query.
func NewDatabaseError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    message,
		Cause:      cause,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewUnauthorizedError reports a failed credential check.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewRateLimitError reports a throttled operation.
func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    message,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// NewUnavailableError reports an unreachable dependency.
func NewUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    message,
		Cause:      cause,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewInternalError reports an unclassified failure.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Cause:      cause,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsNotFound reports whether err represents a not-found outcome.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// HTTPStatus maps an error to the status code it should produce. Unknown
// errors map to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
