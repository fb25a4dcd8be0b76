// Package errors provides standardized error handling for godaq components.
// It includes error classification, standard error variables, and helper
// functions for consistent error wrapping across the layers.
package errors

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors for handling purposes
type ErrorKind int

const (
	// ErrorIO represents channel-level failures other than timeout;
	// fatal to the calling operation but not to the component lifecycle
	ErrorIO ErrorKind = iota
	// ErrorTimeout represents a bounded wait that expired; the channel
	// stays usable and the operation may be retried
	ErrorTimeout
	// ErrorConfig represents invalid or incomplete configuration;
	// always fatal to construction
	ErrorConfig
	// ErrorUsage represents a violated calling contract (programmer error)
	ErrorUsage
)

// String returns the string representation of ErrorKind
func (ek ErrorKind) String() string {
	switch ek {
	case ErrorIO:
		return "io"
	case ErrorTimeout:
		return "timeout"
	case ErrorConfig:
		return "config"
	case ErrorUsage:
		return "usage"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
	ErrUnknownType   = errors.New("unknown component type")
	ErrDuplicateName = errors.New("duplicate component name")

	// Lookup errors
	ErrNotFound = errors.New("component not found")

	// Channel errors
	ErrNotConnected   = errors.New("channel not connected")
	ErrTimeout        = errors.New("operation timed out")
	ErrRuntimeStopped = errors.New("I/O runtime not running")

	// Usage errors
	ErrInvalidSize = errors.New("invalid size argument")
	ErrUnsupported = errors.New("operation not supported by this component")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Kind      ErrorKind
	Err       error
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// newClassified creates a new classified error.
// This is an internal helper - use WrapIO(), WrapTimeout(), WrapConfig() or WrapUsage() instead.
func newClassified(kind ErrorKind, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{
		Kind:      kind,
		Err:       Wrap(err, component, method, action),
		Component: component,
		Operation: method,
	}
}

// WrapIO wraps a channel-level failure with context
func WrapIO(err error, component, method, action string) error {
	return newClassified(ErrorIO, err, component, method, action)
}

// WrapTimeout wraps an expired bounded wait with context
func WrapTimeout(err error, component, method, action string) error {
	return newClassified(ErrorTimeout, err, component, method, action)
}

// WrapConfig wraps a construction-time configuration failure with context
func WrapConfig(err error, component, method, action string) error {
	return newClassified(ErrorConfig, err, component, method, action)
}

// WrapUsage wraps a violated calling contract with context
func WrapUsage(err error, component, method, action string) error {
	return newClassified(ErrorUsage, err, component, method, action)
}

// IsTimeout checks if an error is a timeout so callers can special-case retry logic
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Kind == ErrorTimeout {
		return true
	}
	return errors.Is(err, ErrTimeout)
}

// IsConfig checks if an error is a construction-time configuration failure
func IsConfig(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Kind == ErrorConfig {
		return true
	}
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrDuplicateName)
}

// IsUsage checks if an error signals a violated calling contract
func IsUsage(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Kind == ErrorUsage {
		return true
	}
	return errors.Is(err, ErrInvalidSize) || errors.Is(err, ErrUnsupported)
}

// Classify returns the error kind for an error. Unknown errors default to
// ErrorIO, the only kind that is generally retryable at a higher level.
func Classify(err error) ErrorKind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	switch {
	case IsTimeout(err):
		return ErrorTimeout
	case IsConfig(err):
		return ErrorConfig
	case IsUsage(err):
		return ErrorUsage
	default:
		return ErrorIO
	}
}

// Re-exported stdlib helpers so callers need a single errors import.

// New creates a new error with the given message
func New(text string) error { return errors.New(text) }

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target
func As(err error, target any) bool { return errors.As(err, target) }

// Join wraps multiple errors into a single error
func Join(errs ...error) error { return errors.Join(errs...) }
