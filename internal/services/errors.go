package services

import "errors"

// ValidationError marks input the caller must correct before retrying.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func newValidationError(msg string) error {
	return &ValidationError{msg: msg}
}

// IsValidation reports whether err, or anything it wraps, is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
