package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Formatting(t *testing.T) {
	err := New(KindMissingImage, "Please upload an event image")
	want := "[MISSING_IMAGE] Please upload an event image"
	if err.Error() != want {
		t.Errorf("error string mismatch: got %q, want %q", err.Error(), want)
	}

	wrapped := Wrap(KindPersistenceFailed, "insert failed", errors.New("disk full"))
	want = "[PERSISTENCE_FAILED] insert failed: disk full"
	if wrapped.Error() != want {
		t.Errorf("wrapped error string mismatch: got %q, want %q", wrapped.Error(), want)
	}
}

func TestError_KindMatching(t *testing.T) {
	cause := errors.New("unique constraint violated")
	err := fmt.Errorf("creating event: %w", Wrap(KindPersistenceFailed, "store rejected write", cause))

	if GetKind(err) != KindPersistenceFailed {
		t.Errorf("kind mismatch: got %s, want %s", GetKind(err), KindPersistenceFailed)
	}
	if !errors.Is(err, New(KindPersistenceFailed, "")) {
		t.Error("errors.Is should match on kind")
	}
	if errors.Is(err, New(KindNotFound, "")) {
		t.Error("errors.Is should not match a different kind")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should remain reachable through the chain")
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation([]FieldViolation{
		{Field: "title", Constraint: "min", Message: "Title must be at least 5 characters"},
		{Field: "venue", Constraint: "required", Message: "Venue is required"},
	})

	if err.Kind != KindValidationFailed {
		t.Fatalf("kind mismatch: got %s", err.Kind)
	}
	if len(GetFields(err)) != 2 {
		t.Fatalf("expected 2 field violations, got %d", len(GetFields(err)))
	}
	want := "validation failed: title, venue"
	if err.Message != want {
		t.Errorf("message mismatch: got %q, want %q", err.Message, want)
	}
}

func TestUserMessage_Fallback(t *testing.T) {
	if got := UserMessage(errors.New("dial tcp: refused")); got != "An unexpected error occurred" {
		t.Errorf("fallback message mismatch: got %q", got)
	}
	if got := UserMessage(New(KindMissingTags, "Please add at least one tag")); got != "Please add at least one tag" {
		t.Errorf("structured message mismatch: got %q", got)
	}
}
