package errors

import (
	"errors"
	"fmt"
)

// Code represents a stable error code for programmatic handling.
type Code string

const (
	CodeUnknown            Code = "unknown"
	CodeInvalid            Code = "invalid"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInternal           Code = "internal"
	CodeUnavailable        Code = "unavailable"
	CodeDeadline           Code = "deadline_exceeded"
	CodeDuplicateEmail     Code = "duplicate_email"
	CodeDuplicateStudentID Code = "duplicate_student_id"
	CodeSessionInvalid     Code = "session_invalid"
	CodeRolledBack         Code = "rolled_back"
	CodeDisabled           Code = "disabled"
	CodeRateLimited        Code = "rate_limited"
)

// AppError is a structured error type that carries a code, message, and optional metadata.
type AppError struct {
	Code    Code
	Message string
	Err     error
	Meta    map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AppError) Unwrap() error { return e.Err }

// WithMeta attaches metadata to the error.
func (e *AppError) WithMeta(k string, v any) *AppError {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[k] = v
	return e
}

// Field returns the offending input field recorded on a validation error.
func (e *AppError) Field() string {
	if e == nil || e.Meta == nil {
		return ""
	}
	s, _ := e.Meta["field"].(string)
	return s
}

// New creates a new AppError with code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with code and message.
func Wrap(err error, code Code, message string) *AppError {
	if err == nil {
		return New(code, message)
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// Invalid reports a validation failure for the named input field.
func Invalid(field, message string) *AppError {
	return New(CodeInvalid, message).WithMeta("field", field)
}

// MissingField reports a required field that was absent or empty.
func MissingField(field string) *AppError {
	return Invalid(field, "missing required field: "+field)
}

// IsCode checks if an error has the provided code (through unwrapping).
// Every AppError in the chain is inspected, so a rolled back error still
// matches the code of the step failure it carries.
func IsCode(err error, code Code) bool {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return false
		}
		if ae.Code == code {
			return true
		}
		err = ae.Err
	}
	return false
}

// CodeOf returns the code of the outermost AppError in the chain, or CodeUnknown.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Cause returns the AppError carried inside a rolled back error, if any.
func Cause(err error) *AppError {
	var ae *AppError
	if !errors.As(err, &ae) || ae.Code != CodeRolledBack || ae.Err == nil {
		return nil
	}
	var inner *AppError
	if errors.As(ae.Err, &inner) {
		return inner
	}
	return nil
}
