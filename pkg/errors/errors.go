// Package errors provides custom error types for the copilot-tui system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the copilot-tui system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrOffline indicates the upstream host could not be reached
	ErrOffline = errors.New("upstream unreachable")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrNoSnapshot indicates that no usable snapshot could be obtained
	ErrNoSnapshot = errors.New("no snapshot available")
)

// ConfigError represents a configuration error, such as a project root
// that does not exist or is not a directory.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// StartupError is fatal: the session could not be brought up at all,
// typically because no snapshot is obtainable and no cache exists.
type StartupError struct {
	Message string
	Err     error
}

// Error implements the error interface
func (e *StartupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("startup failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("startup failed: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *StartupError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *StartupError) Is(target error) bool {
	return target == ErrNoSnapshot
}

// NewStartupError creates a new StartupError
func NewStartupError(message string, err error) *StartupError {
	return &StartupError{Message: message, Err: err}
}

// EnablementError represents a defect in the persisted enablement record:
// a schema violation on load, or a failed save.
type EnablementError struct {
	Operation string // "load" or "save"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *EnablementError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("enablement %s failed for %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("enablement %s failed: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *EnablementError) Unwrap() error {
	return e.Err
}

// NewEnablementError creates a new EnablementError
func NewEnablementError(operation, path, message string, err error) *EnablementError {
	return &EnablementError{Operation: operation, Path: path, Message: message, Err: err}
}

// InstallError represents a per-asset enable failure after rollback.
type InstallError struct {
	Asset string
	Step  string
	Err   error
}

// Error implements the error interface
func (e *InstallError) Error() string {
	return fmt.Sprintf("install failed for %s during %s: %v", e.Asset, e.Step, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *InstallError) Unwrap() error {
	return e.Err
}

// RemoveError represents a per-asset disable failure after rollback.
type RemoveError struct {
	Asset string
	Step  string
	Err   error
}

// Error implements the error interface
func (e *RemoveError) Error() string {
	return fmt.Sprintf("remove failed for %s during %s: %v", e.Asset, e.Step, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RemoveError) Unwrap() error {
	return e.Err
}

// APIError represents an error from the upstream host.
type APIError struct {
	Host       string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream error from %s (status %d): %s", e.Host, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error from %s: %s", e.Host, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	return target == ErrOffline
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "frontmatter"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsOffline checks if an error indicates the upstream host was unreachable
func IsOffline(err error) bool {
	return errors.Is(err, ErrOffline)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsStartup checks if an error is fatal to session startup
func IsStartup(err error) bool {
	var se *StartupError
	return errors.As(err, &se)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
