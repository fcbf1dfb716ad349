// Package services provides the document lifecycle operations and their
// standardized error types.
package services

import (
	"errors"
	"fmt"

	"github.com/chatflowhq/chatflow/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrDocumentNil          = errors.New("document cannot be nil")
	ErrDocumentNameRequired = errors.New("document name is required")
	ErrInvalidGraph         = errors.New("graph violates edge invariants")

	// Business Logic Conflicts (409 Conflict).
	ErrNotReady        = errors.New("document is not ready for activation")
	ErrVersionConflict = persistence.ErrVersionConflict
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrDocumentNil) ||
		errors.Is(err, ErrDocumentNameRequired) ||
		errors.Is(err, ErrInvalidGraph)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrNotReady) ||
		errors.Is(err, ErrVersionConflict)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
