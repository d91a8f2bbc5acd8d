package form

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingSender records every request it is asked to send and serves a
// scripted response.
type countingSender struct {
	calls      int64
	status     int
	body       string
	blockUntil chan struct{} // when set, Do blocks until closed
}

func (c *countingSender) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.blockUntil != nil {
		<-c.blockUntil
	}
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader(c.body)),
		Header:     make(http.Header),
	}, nil
}

func TestPublisher_MissingImageNeverReachesNetwork(t *testing.T) {
	a := NewAssembler()
	a.SetDraft(validTestDraft())
	a.Tags.Add("go")
	a.Agenda.Add("9:00 AM - Doors open")
	// No image attached.

	sender := &countingSender{status: http.StatusCreated}
	p := NewPublisher(a, "http://localhost/v1/events", sender)

	_, err := p.Submit(context.Background())
	if err == nil {
		t.Fatal("expected precondition failure")
	}
	if atomic.LoadInt64(&sender.calls) != 0 {
		t.Error("precondition failure must not issue a network call")
	}
	if p.Machine().State() != StateFailed {
		t.Errorf("expected Failed state, got %s", p.Machine().State())
	}
	if p.Machine().FailureReason() != "Please upload an event image" {
		t.Errorf("reason mismatch: %q", p.Machine().FailureReason())
	}
}

func TestPublisher_SuccessResetsForm(t *testing.T) {
	a := readyAssembler(t)
	sender := &countingSender{
		status: http.StatusCreated,
		body:   `{"status":"created","slug":"nextjs-conf-2026"}`,
	}
	p := NewPublisher(a, "http://localhost/v1/events", sender)

	slug, err := p.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if slug != "nextjs-conf-2026" {
		t.Errorf("slug mismatch: %q", slug)
	}
	if p.Machine().State() != StateSucceeded {
		t.Errorf("expected Succeeded, got %s", p.Machine().State())
	}
	if a.Tags.Len() != 0 || a.Agenda.Len() != 0 || a.HasImage() {
		t.Error("successful submission should reset the form")
	}
}

func TestPublisher_ServerMessageSurfacedVerbatim(t *testing.T) {
	a := readyAssembler(t)
	sender := &countingSender{
		status: http.StatusConflict,
		body:   `{"status":"error","message":"An event with this title already exists"}`,
	}
	p := NewPublisher(a, "http://localhost/v1/events", sender)

	_, err := p.Submit(context.Background())
	if err == nil {
		t.Fatal("expected failure")
	}
	if p.Machine().FailureReason() != "An event with this title already exists" {
		t.Errorf("server message not surfaced verbatim: %q", p.Machine().FailureReason())
	}
	// Failure must not reset the form; the user retries from where they were.
	if a.Tags.Len() == 0 {
		t.Error("failed submission should preserve form state")
	}
}

func TestPublisher_FallbackMessageWhenServerSendsNone(t *testing.T) {
	a := readyAssembler(t)
	sender := &countingSender{status: http.StatusInternalServerError, body: `{}`}
	p := NewPublisher(a, "http://localhost/v1/events", sender)

	if _, err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if p.Machine().FailureReason() != "Failed to create event" {
		t.Errorf("fallback message mismatch: %q", p.Machine().FailureReason())
	}
}

func TestPublisher_SingleInFlightSubmission(t *testing.T) {
	a := readyAssembler(t)
	release := make(chan struct{})
	sender := &countingSender{
		status:     http.StatusCreated,
		body:       `{"status":"created","slug":"s"}`,
		blockUntil: release,
	}
	p := NewPublisher(a, "http://localhost/v1/events", sender)

	var wg sync.WaitGroup
	wg.Add(1)
	firstErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		_, err := p.Submit(context.Background())
		firstErr <- err
	}()

	// Wait for the first submission to reach the network.
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&sender.calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first submission never reached the sender")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := p.Submit(context.Background()); err != ErrSubmissionInFlight {
		t.Errorf("second submit should be rejected while in flight, got %v", err)
	}

	close(release)
	wg.Wait()
	if err := <-firstErr; err != nil {
		t.Errorf("first submit failed: %v", err)
	}
	if got := atomic.LoadInt64(&sender.calls); got != 1 {
		t.Errorf("expected exactly 1 network call, got %d", got)
	}
}

func TestPublisher_TransportErrorGenericMessage(t *testing.T) {
	a := readyAssembler(t)
	p := NewPublisher(a, "http://localhost/v1/events", failingSender{})

	if _, err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if p.Machine().FailureReason() != "An unexpected error occurred" {
		t.Errorf("generic message mismatch: %q", p.Machine().FailureReason())
	}
}

type failingSender struct{}

func (failingSender) Do(req *http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("dial tcp: connection refused")
}
