/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("AvailabilityRecord", "iPhone 15 Pro@Fifth Avenue")

	expected := `AvailabilityRecord with key "iPhone 15 Pro@Fifth Avenue" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "bot_token",
			message:  "is required",
			expected: `validation failed for field "bot_token": is required`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestConditionFailedError(t *testing.T) {
	err := NewConditionFailedError("put", "availability <> :new")

	expected := "condition check failed for put operation: availability <> :new"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsConditionFailed(err) {
		t.Error("IsConditionFailed should return true for ConditionFailedError")
	}
}

func TestHTTPStatusError(t *testing.T) {
	tests := []struct {
		status    int
		attempts  int
		transient bool
		message   string
	}{
		{503, 4, true, "request to https://example.test failed with status 503 after 4 attempts"},
		{541, 1, true, "request to https://example.test failed with status 541"},
		{404, 1, false, "request to https://example.test failed with status 404"},
		{500, 1, false, "request to https://example.test failed with status 500"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := NewHTTPStatusError("https://example.test", tt.status, tt.attempts)
			if err.Error() != tt.message {
				t.Errorf("Expected error message %q, got %q", tt.message, err.Error())
			}
			if IsTransient(err) != tt.transient {
				t.Errorf("IsTransient(%d) = %v, want %v", tt.status, IsTransient(err), tt.transient)
			}
		})
	}
}

func TestMalformedPayloadError(t *testing.T) {
	var syntaxErr *json.SyntaxError
	cause := json.Unmarshal([]byte("{"), &struct{}{})

	err := NewMalformedPayloadError("$", cause)
	if !IsMalformedPayload(err) {
		t.Error("IsMalformedPayload should return true for MalformedPayloadError")
	}
	if !errors.As(err, &syntaxErr) {
		t.Error("MalformedPayloadError should unwrap to the decode error")
	}

	missing := NewMalformedPayloadError("body.content.pickupMessage", nil)
	expected := "malformed payload: missing body.content.pickupMessage"
	if missing.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, missing.Error())
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewNotFoundError("AvailabilityRecord", "123")
	wrapped := fmt.Errorf("lookup failed: %w", original)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}

	transient := fmt.Errorf("fetch: %w", NewHTTPStatusError("u", 503, 3))
	if !IsTransient(transient) {
		t.Error("IsTransient should work with wrapped errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrConditionFailed,
		ErrTransient,
		ErrMalformedPayload,
		ErrNoIndexMap,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
