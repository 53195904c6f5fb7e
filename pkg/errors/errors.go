package errors

import (
	"errors"
	"fmt"
)

// Generic error kinds

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid or missing input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrExternal indicates an upstream service returned an error
	ErrExternal = errors.New("external service error")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")

	// ErrRateLimited indicates a request was rejected by rate limiting
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNotImplemented indicates the capability is not implemented
	ErrNotImplemented = errors.New("not implemented")
)

// Dispatch errors. Client faults at the delegation boundary; the API layer
// maps these to 400 responses.

var (
	// ErrAgentNotFound indicates the requested agent is not registered
	ErrAgentNotFound = errors.New("no such agent registered")

	// ErrMethodNotFound indicates the agent does not expose the requested method
	ErrMethodNotFound = errors.New("no such method in agent")

	// ErrNoAgentSelected indicates the model returned no structured agent choice
	ErrNoAgentSelected = errors.New("no agent was selected by the model")
)

// DCA strategy errors. Leaf agents translate these into user-facing text
// rather than structured failures.

var (
	// ErrValidation indicates strategy parameters failed validation
	ErrValidation = errors.New("strategy validation failed")

	// ErrExecution indicates a strategy operation could not be executed
	ErrExecution = errors.New("strategy execution failed")

	// ErrStrategyNotFound indicates the referenced strategy does not exist
	ErrStrategyNotFound = errors.New("strategy not found")
)

// ValidationError carries field-level detail for input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s", e.Field, e.Message)
}

// Unwrap ties field validation into the ErrValidation kind
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a new field validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
