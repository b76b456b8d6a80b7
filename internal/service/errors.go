package service

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")
var ErrForbidden = errors.New("forbidden")

// ErrImageInUse rejects deletion of an image still referenced by items.
var ErrImageInUse = errors.New("image is currently in use")

// ValidationError is a field-scoped input rejection, surfaced as HTTP 422.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
