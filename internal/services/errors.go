package services

import (
	appErr "github.com/bracula/campus/pkg/errors"
)

// clientCodes are failures the caller caused and can act on.
var clientCodes = map[appErr.Code]bool{
	appErr.CodeInvalid:            true,
	appErr.CodeNotFound:           true,
	appErr.CodeForbidden:          true,
	appErr.CodeConflict:           true,
	appErr.CodeDuplicateEmail:     true,
	appErr.CodeDuplicateStudentID: true,
}

// surface unwraps a rolled back transaction whose failing step was a client
// error, so callers see the domain outcome. Storage faults stay wrapped.
func surface(err error) error {
	if c := appErr.Cause(err); c != nil && clientCodes[c.Code] {
		return c
	}
	return err
}

func errInvalidCredentials() error {
	return appErr.New(appErr.CodeUnauthorized, "Invalid email or password")
}
