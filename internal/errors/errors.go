// Package errors provides structured error types for the Eventdeck system.
// All errors carry a kind, a human-readable message, and optional per-field
// detail so handlers can map failures to consistent API responses.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies errors by failure category.
type Kind string

const (
	// KindValidationFailed means one or more scalar field constraints were
	// violated. Field-level detail is retained in Fields.
	KindValidationFailed Kind = "VALIDATION_FAILED"

	// KindMissingImage means no image was attached to a submission.
	KindMissingImage Kind = "MISSING_IMAGE"

	// KindMissingTags means a submission carried no tags.
	KindMissingTags Kind = "MISSING_TAGS"

	// KindMissingAgenda means a submission carried no agenda entries.
	KindMissingAgenda Kind = "MISSING_AGENDA"

	// KindMalformedPayload means a list field could not be decoded from its
	// textual encoding.
	KindMalformedPayload Kind = "MALFORMED_PAYLOAD"

	// KindPersistenceFailed means the backing store rejected the write,
	// including uniqueness violations and unavailability.
	KindPersistenceFailed Kind = "PERSISTENCE_FAILED"

	// KindNotFound means a query matched no record. Query surfaces return
	// this as an empty result, not a fault.
	KindNotFound Kind = "NOT_FOUND"

	// KindUnexpected is the catch-all for faults with no better home.
	KindUnexpected Kind = "UNEXPECTED"
)

// FieldViolation describes a single violated constraint on a named field.
type FieldViolation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// Error is the structured error type used throughout the system.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldViolation
	Cause   error
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a new Error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewValidation creates a ValidationFailed error carrying per-field detail.
// The message summarizes the violated fields so clients that only surface a
// single string still say something useful.
func NewValidation(violations []FieldViolation) *Error {
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	return &Error{
		Kind:    KindValidationFailed,
		Message: fmt.Sprintf("validation failed: %s", strings.Join(fields, ", ")),
		Fields:  violations,
	}
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnexpected if the error is not a structured Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// GetFields extracts field violations from an error chain, if any.
func GetFields(err error) []FieldViolation {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// UserMessage returns the message a client should surface verbatim. Falls
// back to a generic message when the chain carries no structured error.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "An unexpected error occurred"
}
