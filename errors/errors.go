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
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned when input or configuration validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrTransient is returned for vendor failures that are worth retrying
	ErrTransient = errors.New("transient failure")

	// ErrMalformedPayload is returned when the vendor payload cannot be decoded
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNoIndexMap is returned when no index map is found for a type
	ErrNoIndexMap = errors.New("no index map found for type")
)

// NotFoundError represents an error when a record is not found
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

// HTTPStatusError represents an unexpected status code returned by a remote endpoint.
// Attempts is the number of requests made before giving up.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Attempts   int
}

func (e *HTTPStatusError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("request to %s failed with status %d after %d attempts", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// Is reports 503 and 541 as transient. 541 is what the vendor returns when it
// throttles or rejects a session.
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrTransient && IsTransientStatus(e.StatusCode)
}

// MalformedPayloadError represents a vendor payload that could not be decoded
type MalformedPayloadError struct {
	Path string
	Err  error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed payload at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("malformed payload: missing %s", e.Path)
}

func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(recordType, key string) error {
	return &NotFoundError{Type: recordType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewHTTPStatusError creates a new HTTPStatusError
func NewHTTPStatusError(url string, statusCode, attempts int) error {
	return &HTTPStatusError{URL: url, StatusCode: statusCode, Attempts: attempts}
}

// NewMalformedPayloadError creates a new MalformedPayloadError
func NewMalformedPayloadError(path string, err error) error {
	return &MalformedPayloadError{Path: path, Err: err}
}

// IsTransientStatus reports whether an HTTP status code should be retried
func IsTransientStatus(code int) bool {
	return code == 503 || code == 541
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsTransient checks if an error is worth retrying
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsMalformedPayload checks if an error is a malformed payload error
func IsMalformedPayload(err error) bool {
	return errors.Is(err, ErrMalformedPayload)
}
