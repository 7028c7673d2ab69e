package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrNotFound signals that a resolver holds no value for a key.
	// It triggers fallthrough to the next resolver or the declared
	// default and never leaks to application code.
	ErrNotFound = errors.New("value not found")

	// ErrClosed is returned when a Konfig is accessed after Close.
	ErrClosed = errors.New("configuration container is closed")
)

// MissingVariableError reports that no resolver produced a value for a
// declared variable and no default exists.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("variable `%s` is not found and has no default specified", e.Name)
}

// UndeclaredVariableError reports access to a variable that was never
// declared on the container.
type UndeclaredVariableError struct {
	Name string
}

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("variable `%s` is not declared", e.Name)
}

// BackendError reports that a resolver's backend is reachable-but-erroring
// or unreachable (auth failure, network failure, malformed response).
// It is surfaced immediately and never masked by falling through to a
// lower-priority resolver.
type BackendError struct {
	Resolver string
	Op       string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s.%s: backend failed: %v", e.Resolver, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackend wraps err as a BackendError attributed to a resolver operation.
// If err is already a BackendError it is returned unchanged so attribution
// from the failing resolver is preserved through composites.
func NewBackend(resolverName, op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Resolver: resolverName, Op: op, Err: err}
}

// CoercionError reports that a raw value was found but could not be
// converted to the variable's declared kind. Kept distinct from
// MissingVariableError so "missing" and "malformed" are never confused.
type CoercionError struct {
	Name string
	Kind string
	Raw  string
	Err  error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("variable `%s`: cannot coerce %q to %s: %v", e.Name, e.Raw, e.Kind, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err carries the ErrNotFound sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMissing reports whether err is a MissingVariableError.
func IsMissing(err error) bool {
	var me *MissingVariableError
	return errors.As(err, &me)
}

// IsUndeclared reports whether err is an UndeclaredVariableError.
func IsUndeclared(err error) bool {
	var ue *UndeclaredVariableError
	return errors.As(err, &ue)
}

// IsBackend reports whether err is a BackendError.
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// IsCoercion reports whether err is a CoercionError.
func IsCoercion(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}
