package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	appErr "github.com/bracula/campus/pkg/errors"
)

// Unique index names.
const (
	uniqueEmailIndex        = "idx_users_email"
	uniqueStudentIDIndex    = "idx_users_student_id"
	uniqueRegistrationIndex = "idx_event_registrations_event_user"
)

// storageError wraps a backing-store failure as an opaque internal error.
func storageError(err error, message string) error {
	return appErr.Wrap(err, appErr.CodeInternal, message)
}

// userWriteError classifies a users-table write failure. The two known unique
// indexes surface as the same duplicate errors the pre-insert checks return;
// every other fault is a storage failure.
func userWriteError(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch {
		case pgErr.ConstraintName == uniqueEmailIndex || strings.Contains(pgErr.ConstraintName, "email"):
			return ErrDuplicateEmail(err)
		case pgErr.ConstraintName == uniqueStudentIDIndex || strings.Contains(pgErr.ConstraintName, "student_id"):
			return ErrDuplicateStudentID(err)
		}
	}
	return storageError(err, message)
}

// registrationWriteError reports a lost race on the one-row-per-user-and-event
// index as a conflict; the caller may retry the toggle.
func registrationWriteError(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == uniqueRegistrationIndex {
		return appErr.Wrap(err, appErr.CodeConflict, "Registration was changed by another request, try again")
	}
	return storageError(err, message)
}

// ErrDuplicateEmail builds the registration conflict for an existing email.
func ErrDuplicateEmail(cause error) *appErr.AppError {
	return appErr.Wrap(cause, appErr.CodeDuplicateEmail, "Email already exists").WithMeta("field", "email")
}

// ErrDuplicateStudentID builds the registration conflict for an existing student id.
func ErrDuplicateStudentID(cause error) *appErr.AppError {
	return appErr.Wrap(cause, appErr.CodeDuplicateStudentID, "Student ID already exists").WithMeta("field", "student_id")
}
