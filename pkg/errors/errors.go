package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeTimeout          = "TIMEOUT"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInvalidInput     = "INVALID_INPUT"
	CodePersistence      = "PERSISTENCE_ERROR"
	CodeRateLimited      = "RATE_LIMITED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
)

var defaultStatus = map[string]int{
	CodeNotFound:         http.StatusNotFound,
	CodeValidation:       http.StatusUnprocessableEntity,
	CodeUnauthorized:     http.StatusUnauthorized,
	CodeForbidden:        http.StatusForbidden,
	CodeConflict:         http.StatusConflict,
	CodeInternal:         http.StatusInternalServerError,
	CodeBadRequest:       http.StatusBadRequest,
	CodeTimeout:          http.StatusServiceUnavailable,
	CodeUnavailable:      http.StatusServiceUnavailable,
	CodeInvalidInput:     http.StatusBadRequest,
	CodePersistence:      http.StatusInternalServerError,
	CodeRateLimited:      http.StatusTooManyRequests,
	CodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
	CodeUnsupportedMedia: http.StatusUnsupportedMediaType,
}

// StatusFor returns the HTTP status a code maps to, 500 for unknown codes.
func StatusFor(code string) int {
	if status, ok := defaultStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AppError is the error every service returns to its handlers. Message is
// safe to show to a guest; Err carries the cause for logs only.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError by code, so errors.Is(err, ErrNotFound-style
// templates) works across wrapping.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		return StatusFor(e.Code)
	}
	return e.HTTPStatus
}

// WithField adds one field-level reason to Details.
func (e *AppError) WithField(field, reason string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[field] = reason
	return e
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: StatusFor(code)}
}

func Newf(code, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(err error, code, message string) *AppError {
	e := New(code, message)
	e.Err = err
	return e
}

func NotFoundWithID(resource, id string) *AppError {
	e := Newf(CodeNotFound, "%s not found", resource)
	e.Details = map[string]any{"resource": resource, "id": id}
	return e
}

func Validation(message string, details map[string]any) *AppError {
	e := New(CodeValidation, message)
	e.Details = details
	return e
}

func InvalidInput(message string) *AppError { return New(CodeInvalidInput, message) }

func Unauthorized(message string) *AppError { return New(CodeUnauthorized, message) }

func Forbidden(message string) *AppError { return New(CodeForbidden, message) }

func Conflict(message string) *AppError { return New(CodeConflict, message) }

func Internal(message string, err error) *AppError { return Wrap(err, CodeInternal, message) }

// Persistence reports a failed store operation. Callers must leave their
// in-memory state untouched when they return it.
func Persistence(operation string, err error) *AppError {
	return Wrap(err, CodePersistence, "failed to "+operation)
}

func Timeout(message string) *AppError { return New(CodeTimeout, message) }

func Unavailable(service string) *AppError {
	return Newf(CodeUnavailable, "%s is temporarily unavailable", service)
}

func RateLimited() *AppError { return New(CodeRateLimited, "Rate limit exceeded") }

func PayloadTooLarge() *AppError { return New(CodePayloadTooLarge, "Request body too large") }

func UnsupportedMediaType(want string) *AppError {
	return Newf(CodeUnsupportedMedia, "Content-Type must be %s", want)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
