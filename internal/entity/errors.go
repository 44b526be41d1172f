package entity

import (
	"errors"
	"fmt"
)

// Sentinels matched by the concrete error types below through errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("invalid credentials")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPersistence       = errors.New("persistence failure")
)

// ValidationError reports malformed or inconsistent input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced id that does not exist.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AuthError reports a credential mismatch. It never says which field was wrong.
type AuthError struct{}

func (e *AuthError) Error() string { return ErrUnauthorized.Error() }

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

// InvalidTransitionError reports a status change that is not a single step forward,
// or a conditional update whose expected status no longer holds.
type InvalidTransitionError struct {
	OrderID  int
	From     OrderStatus
	To       OrderStatus
	Expected OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.Expected != "" && e.Expected != e.From {
		return fmt.Sprintf("order %d is %s, expected %s", e.OrderID, e.From, e.Expected)
	}
	return fmt.Sprintf("order %d cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// PersistenceError wraps a failure of the backing store.
type PersistenceError struct {
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
