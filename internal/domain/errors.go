package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrIncompleteInput means a required field is missing or not well formed.
	// The form layer shows the missing-field list and does not evaluate.
	ErrIncompleteInput = errors.New("incomplete input")

	// ErrUndefinedArithmetic means a formula has no finite value for its
	// inputs, e.g. division by a zero volume.
	ErrUndefinedArithmetic = errors.New("undefined arithmetic")

	// ErrNoMatchingBand means a band table is not exhaustive. It is a
	// configuration defect, never a runtime condition.
	ErrNoMatchingBand = errors.New("no matching band")

	ErrUnknownCalculator = errors.New("unknown calculator")
)

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrCodeIncompleteInput   = "INCOMPLETE_INPUT"
	ErrCodeUnknownCalculator = "UNKNOWN_CALCULATOR"
	ErrCodeRateLimit         = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalServer    = "INTERNAL_SERVER_ERROR"
)

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// IncompleteInputError lists every field that blocked an evaluation.
type IncompleteInputError struct {
	Calculator string             `json:"calculator"`
	Problems   []*ValidationError `json:"problems"`
}

func (e *IncompleteInputError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Field + ": " + p.Message
	}
	return fmt.Sprintf("%s: %s: %s", e.Calculator, ErrIncompleteInput, strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is match ErrIncompleteInput.
func (e *IncompleteInputError) Unwrap() error {
	return ErrIncompleteInput
}

// Fields returns the names of the offending fields.
func (e *IncompleteInputError) Fields() []string {
	names := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		names[i] = p.Field
	}
	return names
}

// Messages returns the inline messages shown under the form.
func (e *IncompleteInputError) Messages() []string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return msgs
}
