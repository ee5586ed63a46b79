package service

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/technest/technest-api/internal/repository"
)

var (
	ErrUnauthenticated       = errors.New("authentication required")
	ErrNotFound              = errors.New("resource not found")
	ErrForbidden             = errors.New("permission denied")
	ErrSelfInterestForbidden = errors.New("organizers cannot mark interest in their own event")
	ErrCapacityExceeded      = errors.New("event is at full capacity")
	ErrValidationFailed      = errors.New("validation failed")
	ErrOrganizerNotFound     = errors.New("organizer not found")
	ErrInvalidStatus         = errors.New("invalid interest status")

	ErrUserEmailExists  = repository.ErrUserEmailExists
	ErrWrongCredentials = errors.New("wrong email or password")
)

// ValidationError carries field-level messages keyed by the input field name.
// It matches ErrValidationFailed under errors.Is.
type ValidationError struct {
	Fields validation.Errors
}

func (e ValidationError) Error() string {
	return ErrValidationFailed.Error() + ": " + e.Fields.Error()
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func newValidationError(fields validation.Errors) error {
	if err := fields.Filter(); err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			return ValidationError{Fields: errs}
		}
		return ValidationError{Fields: validation.Errors{"_": err}}
	}
	return nil
}

// InternalError wraps a store failure nobody expected. Op names the failing call.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return e.Op + " -> " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func internalErr(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
