// Package apperror holds the error taxonomy shared by every module.
// Services return these types (possibly wrapped with %w) and handlers
// classify them with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

// ValidationError represents malformed caller input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// AuthorizationError represents an actor whose role does not permit the operation.
type AuthorizationError struct {
	Role      string
	Operation string
}

// Error implements the error interface
func (e *AuthorizationError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("not authorized to %s", e.Operation)
	}
	return fmt.Sprintf("role %s is not authorized to %s", e.Role, e.Operation)
}

// InvalidTransitionError represents a status change the order state machine does not allow.
type InvalidTransitionError struct {
	From string
	To   string
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// InvalidStateError represents an operation attempted while the order is in a status that forbids it.
type InvalidStateError struct {
	Status    string
	Operation string
}

// Error implements the error interface
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while order is %s", e.Operation, e.Status)
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	Key      string
	Value    string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %s not found", e.Resource, e.Key, e.Value)
}

// ConcurrentModificationError is returned when a conditional update lost a race:
// the stored record no longer matched the state the caller observed.
type ConcurrentModificationError struct {
	Resource string
	ID       string
	Expected string
}

// Error implements the error interface
func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently (expected status %s)", e.Resource, e.ID, e.Expected)
}

// TransientError wraps a network, timeout or availability failure of a backing store.
type TransientError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsRetryable reports whether the caller may retry the operation that produced err.
func IsRetryable(err error) bool {
	var transient *TransientError
	var conflict *ConcurrentModificationError
	return errors.As(err, &transient) || errors.As(err, &conflict)
}

// IsTransient reports whether err is, or wraps, a TransientError.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}
