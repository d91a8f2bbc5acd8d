package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/eventdeck/eventdeck/internal/errors"
)

// Sender posts an assembled payload and returns the response. *http.Client
// satisfies it; tests substitute a fake to observe (or count) calls.
type Sender interface {
	Do(req *http.Request) (*http.Response, error)
}

// Publisher drives a submission end to end: precondition check, payload
// assembly, one HTTP call, and the state machine transitions around it.
type Publisher struct {
	form     *Assembler
	machine  *Machine
	sender   Sender
	endpoint string
}

// NewPublisher creates a publisher posting to endpoint. sender may be nil,
// in which case http.DefaultClient is used.
func NewPublisher(form *Assembler, endpoint string, sender Sender) *Publisher {
	if sender == nil {
		sender = http.DefaultClient
	}
	return &Publisher{
		form:     form,
		machine:  NewMachine(),
		sender:   sender,
		endpoint: endpoint,
	}
}

// Machine exposes the submission state machine for UI binding.
func (p *Publisher) Machine() *Machine {
	return p.machine
}

// serverResponse is the subset of the API envelope the client reads.
type serverResponse struct {
	Status  string `json:"status"`
	Slug    string `json:"slug"`
	Message string `json:"message"`
}

// Submit commits the form. When a precondition fails, no network call is
// issued and the precondition's message is both returned and recorded on the
// state machine. On success the form is reset for the next event and the
// created record's slug is returned.
func (p *Publisher) Submit(ctx context.Context) (string, error) {
	if err := p.machine.Begin(); err != nil {
		return "", err
	}

	if err := p.form.CheckReady(); err != nil {
		p.machine.Fail(errors.UserMessage(err))
		return "", err
	}

	contentType, body, err := p.form.Payload()
	if err != nil {
		p.machine.Fail("An unexpected error occurred")
		return "", errors.Wrap(errors.KindUnexpected, "An unexpected error occurred", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		p.machine.Fail("An unexpected error occurred")
		return "", errors.Wrap(errors.KindUnexpected, "An unexpected error occurred", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.sender.Do(req)
	if err != nil {
		p.machine.Fail("An unexpected error occurred")
		return "", errors.Wrap(errors.KindUnexpected, "An unexpected error occurred", err)
	}
	defer resp.Body.Close()

	var sr serverResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&sr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Surface the server's message verbatim when it sent one.
		message := "Failed to create event"
		if decodeErr == nil && sr.Message != "" {
			message = sr.Message
		}
		p.machine.Fail(message)
		return "", errors.New(errors.KindUnexpected, message)
	}

	if decodeErr != nil {
		p.machine.Fail("An unexpected error occurred")
		return "", errors.Wrap(errors.KindUnexpected, "An unexpected error occurred",
			fmt.Errorf("invalid success response: %w", decodeErr))
	}

	p.form.Reset()
	p.machine.Succeed()
	return sr.Slug, nil
}
