// Package form provides the client side of the submission pipeline: the
// mutable draft state behind the create-event form, the multipart payload
// assembly, and the submission lifecycle.
package form

import (
	"errors"
	"sync"
)

// ErrSubmissionInFlight is returned by Begin while a submission is already
// outstanding. Exactly one submission may be in flight at a time.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// State is the submission lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSubmitting:
		return "Submitting"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Machine is the explicit submission state machine. It replaces the bare
// "is loading" flag with named states so re-entrancy is enforceable: Begin
// fails while a submission is outstanding and the UI can key its controls
// off State.
type Machine struct {
	mu     sync.Mutex
	state  State
	reason string
}

// NewMachine creates a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// Begin transitions to Submitting. From Submitting it fails with
// ErrSubmissionInFlight; from every other state it clears any previous
// failure reason and succeeds.
func (m *Machine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	m.state = StateSubmitting
	m.reason = ""
	return nil
}

// Succeed transitions Submitting to Succeeded.
func (m *Machine) Succeed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateSubmitting {
		m.state = StateSucceeded
	}
}

// Fail transitions Submitting to Failed and records the reason.
func (m *Machine) Fail(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateSubmitting {
		m.state = StateFailed
		m.reason = reason
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FailureReason returns the reason recorded by the last Fail, or the empty
// string.
func (m *Machine) FailureReason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reason
}
