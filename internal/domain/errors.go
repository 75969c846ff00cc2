package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrBakeInProgress    = errors.New("a bake is already in progress")
	ErrNoActiveBake      = errors.New("no active bake")
	ErrNoFormulaSelected = errors.New("no formula selected")
	ErrNoTargetTime      = errors.New("no target bake time set")
)

// ValidationError reports a rejected precondition on a lifecycle or
// formula operation. Never fatal: the caller prompts the user to fix
// the input. It may wrap a sentinel so callers can match with errors.Is.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError wrapping the given sentinel.
func Invalid(sentinel error, format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...), Err: sentinel}
}

// Invalidf builds a ValidationError with no underlying sentinel.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ParseError reports malformed import text. The operation is aborted
// and no state changes.
type ParseError struct {
	Missing []string // required fields that could not be extracted
	Reason  string
}

func (e *ParseError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("parse formula: missing %v", e.Missing)
	}
	return "parse formula: " + e.Reason
}

// PersistenceWarning means a storage write failed after the in-memory
// state transition already took effect. The operation stands; the user
// is warned the change may not survive a restart.
type PersistenceWarning struct {
	Op  string
	Err error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("%s: change applied but not persisted: %v", w.Op, w.Err)
}

func (w *PersistenceWarning) Unwrap() error { return w.Err }

// IsPersistenceWarning reports whether err is a non-fatal storage
// warning rather than an operation failure.
func IsPersistenceWarning(err error) bool {
	var pw *PersistenceWarning
	return errors.As(err, &pw)
}
