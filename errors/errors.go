/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a label or stored document is not found
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateName is returned when a name normalizes to one already in use
	ErrDuplicateName = errors.New("name already in use")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvariantViolation signals that the registry map and name index diverged.
	// It indicates a bug and should never surface in normal operation.
	ErrInvariantViolation = errors.New("registry invariant violated")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrNoIndexMap is returned when no index map is found for a type
	ErrNoIndexMap = errors.New("no index map found for type")

	// ErrNotLoaded is returned when a registry is mutated before Load completed
	ErrNotLoaded = errors.New("registry not loaded")

	// ErrAlreadyLoaded is returned when Load is called a second time
	ErrAlreadyLoaded = errors.New("registry already loaded")

	// ErrClosed is returned when a registry is mutated after Close
	ErrClosed = errors.New("registry closed")

	// ErrUnsupportedVersion is returned when a stored document is newer than this build understands
	ErrUnsupportedVersion = errors.New("unsupported storage version")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateNameError is returned by create and rename when the normalized
// form of Name is already indexed by another label.
type DuplicateNameError struct {
	Name           string
	NormalizedName string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("the name %s (%s) is already in use", e.Name, e.NormalizedName)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvariantViolationError describes which registry invariant no longer holds
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("registry invariant violated: %s", e.Detail)
}

func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// VersionError is returned when a stored document carries a major version
// newer than the one supported by the reader.
type VersionError struct {
	Key       string
	Found     int
	Supported int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("document %q has version %d, newest supported is %d", e.Key, e.Found, e.Supported)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewDuplicateNameError creates a new DuplicateNameError
func NewDuplicateNameError(name, normalizedName string) error {
	return &DuplicateNameError{Name: name, NormalizedName: normalizedName}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewInvariantViolationError creates a new InvariantViolationError
func NewInvariantViolationError(format string, args ...any) error {
	return &InvariantViolationError{Detail: fmt.Sprintf(format, args...)}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewVersionError creates a new VersionError
func NewVersionError(key string, found, supported int) error {
	return &VersionError{Key: key, Found: found, Supported: supported}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateName checks if an error is a duplicate name error
func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvariantViolation checks if an error reports a broken registry invariant
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}
