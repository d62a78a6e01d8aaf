package types

import (
	"errors"
	"net/http"

	appErr "github.com/bracula/campus/pkg/errors"
)

const internalMessage = "Internal server error"

var statusByCode = map[appErr.Code]int{
	appErr.CodeInvalid:            http.StatusBadRequest,
	appErr.CodeDuplicateEmail:     http.StatusBadRequest,
	appErr.CodeDuplicateStudentID: http.StatusBadRequest,
	appErr.CodeUnauthorized:       http.StatusUnauthorized,
	appErr.CodeSessionInvalid:     http.StatusUnauthorized,
	appErr.CodeForbidden:          http.StatusForbidden,
	appErr.CodeNotFound:           http.StatusNotFound,
	appErr.CodeConflict:           http.StatusConflict,
	appErr.CodeRateLimited:        http.StatusTooManyRequests,
	appErr.CodeDisabled:           http.StatusNotImplemented,
	appErr.CodeUnavailable:        http.StatusServiceUnavailable,
}

// clientError returns the AppError a client should see, or nil for faults
// that must stay opaque. A rolled back transaction exposes the step failure
// when that failure was the client's.
func clientError(err error) *appErr.AppError {
	var ae *appErr.AppError
	if !errors.As(err, &ae) {
		return nil
	}
	if ae.Code == appErr.CodeRolledBack {
		ae = appErr.Cause(err)
		if ae == nil {
			return nil
		}
	}
	if _, ok := statusByCode[ae.Code]; !ok {
		return nil
	}
	return ae
}

// StatusFor maps an error to its HTTP status. Storage faults, timeouts and
// unknown errors are 500.
func StatusFor(err error) int {
	if ae := clientError(err); ae != nil {
		return statusByCode[ae.Code]
	}
	return http.StatusInternalServerError
}

// FromAppError renders err as an error envelope. Server faults carry a
// generic message only.
func FromAppError(err error) APIResponse {
	ae := clientError(err)
	if ae == nil {
		return APIResponse{Status: StatusError, Message: internalMessage, Code: string(appErr.CodeInternal)}
	}
	return APIResponse{Status: StatusError, Message: ae.Message, Code: string(ae.Code), Field: ae.Field()}
}
