package form

import "testing"

func TestMachine_Lifecycle(t *testing.T) {
	m := NewMachine()
	if m.State() != StateIdle {
		t.Fatalf("new machine should be Idle, got %s", m.State())
	}

	if err := m.Begin(); err != nil {
		t.Fatalf("begin from Idle failed: %v", err)
	}
	if m.State() != StateSubmitting {
		t.Fatalf("expected Submitting, got %s", m.State())
	}

	if err := m.Begin(); err != ErrSubmissionInFlight {
		t.Fatalf("second begin should be rejected, got %v", err)
	}

	m.Succeed()
	if m.State() != StateSucceeded {
		t.Fatalf("expected Succeeded, got %s", m.State())
	}

	// A finished machine accepts the next submission.
	if err := m.Begin(); err != nil {
		t.Fatalf("begin after success failed: %v", err)
	}
	m.Fail("Please add at least one tag")
	if m.State() != StateFailed {
		t.Fatalf("expected Failed, got %s", m.State())
	}
	if m.FailureReason() != "Please add at least one tag" {
		t.Errorf("reason mismatch: %q", m.FailureReason())
	}

	// Retrying after a failure clears the recorded reason.
	if err := m.Begin(); err != nil {
		t.Fatalf("begin after failure failed: %v", err)
	}
	if m.FailureReason() != "" {
		t.Errorf("reason should clear on retry, got %q", m.FailureReason())
	}
}

func TestMachine_TransitionsOnlyFromSubmitting(t *testing.T) {
	m := NewMachine()

	m.Succeed()
	m.Fail("nope")
	if m.State() != StateIdle {
		t.Errorf("Succeed/Fail outside Submitting should be ignored, got %s", m.State())
	}
}
