package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventdeck/eventdeck/internal/cache"
	"github.com/eventdeck/eventdeck/internal/event"
	"github.com/eventdeck/eventdeck/internal/store"
)

func seedEvent(t *testing.T, s store.EventStore, slug string, tags []string, createdAt time.Time) *event.Event {
	t.Helper()
	e := &event.Event{
		ID:          event.NewID(createdAt),
		Slug:        slug,
		Title:       "Event " + slug,
		Organizer:   "Org",
		Overview:    "A catchy one-sentence summary",
		Description: "A longer description of what happens at this event",
		Date:        "2026-10-21",
		Time:        "09:00",
		Mode:        event.ModeOnline,
		Venue:       "Online",
		Location:    "Remote",
		Audience:    "Developers",
		Tags:        tags,
		Agenda:      []string{"9:00 AM - Keynote"},
		Image:       "/assets/posters/" + slug + ".png",
		CreatedAt:   createdAt,
	}
	if err := s.Create(context.Background(), e); err != nil {
		t.Fatalf("failed to seed %s: %v", slug, err)
	}
	return e
}

func getPath(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	DefaultMiddleware()(h).ServeHTTP(rec, req)
	return rec
}

func TestQuery_ListEmpty(t *testing.T) {
	h := NewQueryHandler(store.NewMemoryStore(), nil, zerolog.Nop())

	rec := getPath(h, "/v1/events")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Count != 0 || resp.Events == nil || len(resp.Events) != 0 {
		t.Errorf("empty listing should be an empty array, got %+v", resp)
	}
}

func TestQuery_ListRecencyOrder(t *testing.T) {
	events := store.NewMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedEvent(t, events, "first", []string{"go"}, base)
	seedEvent(t, events, "second", []string{"go"}, base.Add(time.Hour))
	seedEvent(t, events, "third", []string{"go"}, base.Add(2*time.Hour))

	h := NewQueryHandler(events, nil, zerolog.Nop())
	rec := getPath(h, "/v1/events")

	var resp ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("expected 3 events, got %d", resp.Count)
	}
	for i, want := range []string{"third", "second", "first"} {
		if resp.Events[i].Slug != want {
			t.Errorf("position %d: got %q, want %q", i, resp.Events[i].Slug, want)
		}
	}
}

func TestQuery_ListServedFromCache(t *testing.T) {
	events := store.NewMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedEvent(t, events, "cached", []string{"go"}, base)

	h := NewQueryHandler(events, cache.NewListingCache(time.Hour), zerolog.Nop())

	rec := getPath(h, "/v1/events")
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first read should miss, got %q", rec.Header().Get("X-Cache"))
	}

	// A write inside the freshness window is not visible yet.
	seedEvent(t, events, "late-arrival", []string{"go"}, base.Add(time.Minute))

	rec = getPath(h, "/v1/events")
	if rec.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second read should hit, got %q", rec.Header().Get("X-Cache"))
	}

	var resp ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid cached body: %v", err)
	}
	if resp.Count != 1 || resp.Events[0].Slug != "cached" {
		t.Errorf("cached body should be the original snapshot, got %+v", resp)
	}
}

func TestQuery_GetBySlug(t *testing.T) {
	events := store.NewMemoryStore()
	seeded := seedEvent(t, events, "gophercon-2026", []string{"go"}, time.Now().UTC())

	h := NewQueryHandler(events, nil, zerolog.Nop())
	rec := getPath(h, "/v1/events/gophercon-2026")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got event.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if got.Slug != seeded.Slug || got.Title != seeded.Title || got.Image != seeded.Image {
		t.Errorf("detail mismatch: %+v", got)
	}
}

func TestQuery_GetBySlugNotFound(t *testing.T) {
	h := NewQueryHandler(store.NewMemoryStore(), nil, zerolog.Nop())

	rec := getPath(h, "/v1/events/no-such-event")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "Event not found" {
		t.Errorf("message mismatch: %q", resp.Message)
	}
}

func TestQuery_SimilarSharesTags(t *testing.T) {
	events := store.NewMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedEvent(t, events, "source", []string{"go", "cloud"}, base)
	seedEvent(t, events, "shares-go", []string{"go"}, base.Add(time.Hour))
	seedEvent(t, events, "unrelated", []string{"rust"}, base.Add(2*time.Hour))

	h := NewQueryHandler(events, nil, zerolog.Nop())
	rec := getPath(h, "/v1/events/source/similar")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Count != 1 || resp.Events[0].Slug != "shares-go" {
		t.Errorf("expected only shares-go, got %+v", resp)
	}
}

func TestQuery_SimilarUnknownSlugFailSoft(t *testing.T) {
	h := NewQueryHandler(store.NewMemoryStore(), nil, zerolog.Nop())

	rec := getPath(h, "/v1/events/no-such-event/similar")
	if rec.Code != http.StatusOK {
		t.Fatalf("similarity must never error, got %d", rec.Code)
	}

	var resp ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Count != 0 || len(resp.Events) != 0 {
		t.Errorf("expected empty list, got %+v", resp)
	}
}

func TestQuery_MethodNotAllowed(t *testing.T) {
	h := NewQueryHandler(store.NewMemoryStore(), nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/v1/events/some-slug", nil)
	rec := httptest.NewRecorder()
	DefaultMiddleware()(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestQuery_UnroutablePath(t *testing.T) {
	h := NewQueryHandler(store.NewMemoryStore(), nil, zerolog.Nop())

	rec := getPath(h, "/v1/events/a/b/c")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
