// Package persistence provides standardized error types for store operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDocumentNotFound indicates no document exists for the given id.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentAlreadyExists indicates a document with the same id exists.
	ErrDocumentAlreadyExists = errors.New("document already exists")

	// ErrVersionConflict indicates the save carried a stale version token:
	// the stored document changed since the client loaded it.
	ErrVersionConflict = errors.New("document version conflict")
)

// DocumentError wraps document store errors with operation context.
type DocumentError struct {
	Op         string // Operation being performed (e.g. "GetByID", "Save")
	DocumentID string
	Err        error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s operation failed for document %s: %v", e.Op, e.DocumentID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func (e *DocumentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDocumentError creates a new document error with context.
func NewDocumentError(op, documentID string, err error) *DocumentError {
	return &DocumentError{
		Op:         op,
		DocumentID: documentID,
		Err:        err,
	}
}

// IsDocumentNotFound checks if an error indicates a missing document.
func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

// IsVersionConflict checks if an error indicates a stale save.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsDocumentAlreadyExists checks if an error indicates an id collision.
func IsDocumentAlreadyExists(err error) bool {
	return errors.Is(err, ErrDocumentAlreadyExists)
}
