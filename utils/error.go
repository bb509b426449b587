package utils

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrFromDateAfterToDate = errors.New("from date must be before to date")
	ErrInvalidPartyType    = errors.New("party type must be Customer or Supplier")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidFilter       = errors.New("invalid filter")
)

// ValidationError is a user-facing failure: the request is rejected as-is and nothing is retried.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(err error, format string, args ...any) *ValidationError {
	return &ValidationError{Err: err, Details: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
