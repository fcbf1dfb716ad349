// Package builder provides standardized error types for graph mutations.
package builder

import (
	"errors"
	"fmt"
)

// Structural errors indicate caller misuse and fail the mutation loudly.
var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrUnknownKind        = errors.New("unknown node kind")
	ErrConfigKindMismatch = errors.New("config does not match node kind")
	ErrInvalidPatch       = errors.New("invalid config patch")
)

// Connection rejections are expected user-action outcomes. Callers surface
// them as feedback and never treat them as failures of the session.
var (
	ErrSelfLoop            = errors.New("source and target are the same node")
	ErrDuplicateConnection = errors.New("connection already exists")
	ErrInvalidHandle       = errors.New("invalid source handle")
)

// ConnectionError wraps a connection rejection with the attempted endpoints.
type ConnectionError struct {
	Source string
	Target string
	Handle string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Handle != "" {
		return fmt.Sprintf("cannot connect %s[%s] -> %s: %v", e.Source, e.Handle, e.Target, e.Err)
	}

	return fmt.Sprintf("cannot connect %s -> %s: %v", e.Source, e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// MutationError wraps a structural mutation failure with its operation.
type MutationError struct {
	Op     string
	NodeID string
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed for node %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func (e *MutationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsRejection checks if an error is a connection-validator rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrSelfLoop) ||
		errors.Is(err, ErrDuplicateConnection) ||
		errors.Is(err, ErrInvalidHandle)
}

// IsStructural checks if an error indicates caller misuse of the mutation API.
func IsStructural(err error) bool {
	return errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrUnknownKind) ||
		errors.Is(err, ErrConfigKindMismatch) ||
		errors.Is(err, ErrInvalidPatch)
}
