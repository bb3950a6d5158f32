package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		message   string
		details   string
		requestID string
	}{
		{
			name:      "Unknown calculator",
			code:      ErrCodeUnknownCalculator,
			message:   "Calculator not found",
			details:   "no calculator named psa-ratio",
			requestID: "req-123",
		},
		{
			name:      "Rate limited",
			code:      ErrCodeRateLimit,
			message:   "Too many requests",
			details:   "retry later",
			requestID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.code, tt.message, tt.details, tt.requestID)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}
			if err.Message != tt.message {
				t.Errorf("Expected message %s, got %s", tt.message, err.Message)
			}
			if err.Details != tt.details {
				t.Errorf("Expected details %s, got %s", tt.details, err.Details)
			}
			if err.RequestID != tt.requestID {
				t.Errorf("Expected requestID %s, got %s", tt.requestID, err.RequestID)
			}
			if time.Since(err.Timestamp) > time.Minute {
				t.Errorf("Timestamp should be recent, got %v", err.Timestamp)
			}

			expectedError := tt.code + ": " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("psa", "PSA must be a number", "abc")

	if err.Field != "psa" || err.Value != "abc" {
		t.Errorf("Unexpected validation error: %+v", err)
	}
	expected := "validation error for field 'psa': PSA must be a number"
	if err.Error() != expected {
		t.Errorf("Expected error string %s, got %s", expected, err.Error())
	}
}

func TestIncompleteInputError(t *testing.T) {
	err := &IncompleteInputError{
		Calculator: "psa-density",
		Problems: []*ValidationError{
			NewValidationError("psa", "PSA is required", nil),
			NewValidationError("volume", "Prostate volume must be a number", "x"),
		},
	}

	var wrapped error = fmt.Errorf("evaluate: %w", err)
	if !errors.Is(wrapped, ErrIncompleteInput) {
		t.Error("Expected errors.Is to match ErrIncompleteInput")
	}

	var target *IncompleteInputError
	if !errors.As(wrapped, &target) {
		t.Fatal("Expected errors.As to find IncompleteInputError")
	}

	fields := target.Fields()
	if len(fields) != 2 || fields[0] != "psa" || fields[1] != "volume" {
		t.Errorf("Expected fields [psa volume], got %v", fields)
	}
	if target.Messages()[0] != "PSA is required" {
		t.Errorf("Unexpected first message %q", target.Messages()[0])
	}

	expected := "psa-density: incomplete input: psa: PSA is required; volume: Prostate volume must be a number"
	if err.Error() != expected {
		t.Errorf("Expected error string %q, got %q", expected, err.Error())
	}
}

func TestErrorCodeConstants(t *testing.T) {
	expected := map[string]string{
		ErrCodeIncompleteInput:   "INCOMPLETE_INPUT",
		ErrCodeUnknownCalculator: "UNKNOWN_CALCULATOR",
		ErrCodeRateLimit:         "RATE_LIMIT_EXCEEDED",
		ErrCodeInternalServer:    "INTERNAL_SERVER_ERROR",
	}

	for actual, want := range expected {
		if actual != want {
			t.Errorf("Expected %s, got %s", want, actual)
		}
	}
}
