// Package domainerrors defines coded, caller-recoverable errors shared by the
// service layer. Stores speak in sentinel errors; services translate those
// facts into coded errors; transport maps codes onto HTTP statuses.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "validation"
	CodeConflict      Code = "conflict"
	CodeNotFound      Code = "not_found"
	CodeNotConfigured Code = "not_configured"
	CodeInvalidUnit   Code = "invalid_unit"
	CodeCycleDetected Code = "cycle_detected"
	CodeBadRequest    Code = "bad_request"
	CodeInternal      Code = "internal"
)

// Error carries a code for transport mapping plus a human-readable message.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error while keeping it
// reachable through errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ToStatus maps a domain error code onto an HTTP status. Unknown codes land
// on 500 so configuration defects fail loudly rather than masquerading as
// client errors.
func ToStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeCycleDetected:
		return http.StatusConflict
	case CodeNotConfigured, CodeInvalidUnit:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
