package service

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Handlers translate these to HTTP statuses; raw
// storage errors never cross the API boundary.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("relation already exists")
	ErrSelfFollow = errors.New("cannot follow yourself")
	ErrForbidden  = errors.New("permission denied")
	ErrEmptyCart  = errors.New("shopping cart is empty")
)

// ValidationError reports malformed or missing recipe composition data.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
