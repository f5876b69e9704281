// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the check framework and its collaborators
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrCollection       = errors.New("command collection failed")
	ErrNotConnected     = errors.New("device not connected")
	ErrNotFound         = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrValidationFailed = errors.New("validation failed")
)

// ConfigError represents a malformed check definition or input.
// It is never retried: it points at a definition defect, not at the device.
type ConfigError struct {
	Check  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Check == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.Check, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfigError creates a new configuration error
func NewConfigError(check, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Check:  check,
		Reason: fmt.Sprintf(format, args...),
	}
}

// CollectionError represents a transport or collection failure for one command
type CollectionError struct {
	Device  string
	Command string
	Err     error
}

func (e *CollectionError) Error() string {
	msg := "collecting"
	if e.Command != "" {
		msg += fmt.Sprintf(" '%s'", e.Command)
	}
	if e.Device != "" {
		msg += " on " + e.Device
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrCollection and the transport error to errors.Is/As.
func (e *CollectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCollection}
	}
	return []error{ErrCollection, e.Err}
}

// NewCollectionError creates a collection error
func NewCollectionError(device, command string, err error) *CollectionError {
	return &CollectionError{
		Device:  device,
		Command: command,
		Err:     err,
	}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return NewValidationError(v.errors...)
}
