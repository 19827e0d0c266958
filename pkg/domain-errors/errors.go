// Package domainerrors provides coded errors for expected business
// conditions. Services return these instead of panicking or leaking
// infrastructure errors; the HTTP layer maps codes to status codes.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. Codes are stable strings so they can be
// returned in API error envelopes and matched by clients.
type Code string

const (
	// CodeValidation covers field-level input problems. The error carries a
	// field→reason map retrievable via Fields.
	CodeValidation Code = "validation_error"

	// CodeNotFound: a referenced record (hospital ID, registration number)
	// does not exist.
	CodeNotFound Code = "not_found"

	// CodeConflict: a uniqueness or claim rule was violated, e.g. a hospital
	// ID that is already consumed by another registration.
	CodeConflict Code = "conflict"

	// CodeInvalidTransition: the registration is in a state that does not
	// permit the requested transition. Indicates stale client state.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeIdentifierExhausted: identifier generation hit the retry cap
	// without producing an unused value.
	CodeIdentifierExhausted Code = "identifier_exhausted"

	// CodeNotApproved: a certificate was requested for a registration that
	// is not in the approved state.
	CodeNotApproved Code = "not_approved"

	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error. Fields is only populated for
// CodeValidation.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// NewValidation creates a CodeValidation error carrying per-field reasons.
func NewValidation(fields map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "one or more fields are invalid",
		Fields:  fields,
	}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// Fields returns the field→reason map of a validation error, or nil.
func Fields(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// ToHTTPStatus maps a domain error code to an HTTP status code.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition, CodeNotApproved:
		return http.StatusConflict
	case CodeIdentifierExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
