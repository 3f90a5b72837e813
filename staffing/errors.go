/*
errors.go - Centralized error types for the staffing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses with IsClientError/IsNotFound.

ERROR CATEGORIES:
  1. Validation errors - user-correctable input problems (allocation out of
     range, missing PO number, end date not after start date)
  2. Not-found errors - referenced assignment/amendment/employee id missing
     at mutation time

  Malformed dates are NOT errors: the date-range evaluator fails closed and
  treats them as absent/inactive, since presentation layers need to render
  something even for bad data.

USAGE:
  if errors.Is(err, staffing.ErrValidation) { ... }

  var verr *staffing.ValidationError
  if errors.As(err, &verr) { show(verr.Field, verr.Message) }
*/
package staffing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all user-correctable input problems.
	// Never retried automatically, always surfaced synchronously.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record does not exist at
	// mutation time. No partial state change occurs.
	ErrNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError identifies which record was missing.
type NotFoundError struct {
	Kind string // "assignment", "amendment", "employee"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError for the given record kind and id.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
