package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eventdeck/eventdeck/internal/cache"
	"github.com/eventdeck/eventdeck/internal/event"
	"github.com/eventdeck/eventdeck/internal/store"
)

// ListResponse is the envelope for the listing read surface. Consumers
// render title, image, slug, location, date, and time per item.
type ListResponse struct {
	Events []*event.Event `json:"events"`
	Count  int            `json:"count"`
}

// QueryHandler serves the read-only event surfaces:
//
//	GET /v1/events               all events, most recent first
//	GET /v1/events/{slug}        one event
//	GET /v1/events/{slug}/similar  other events sharing at least one tag
type QueryHandler struct {
	events  store.EventStore
	listing *cache.ListingCache
	log     zerolog.Logger
}

// NewQueryHandler creates a new query handler. listing may be nil to serve
// every listing read from the store.
func NewQueryHandler(events store.EventStore, listing *cache.ListingCache, log zerolog.Logger) *QueryHandler {
	return &QueryHandler{events: events, listing: listing, log: log}
}

// ServeHTTP routes the query request by path.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/events"), "/")
	switch {
	case rest == "":
		h.handleList(w, r)
	case strings.HasSuffix(rest, "/similar"):
		h.handleSimilar(w, r, strings.TrimSuffix(rest, "/similar"))
	case !strings.Contains(rest, "/"):
		h.handleGet(w, r, rest)
	default:
		writeErrorMessage(w, http.StatusNotFound, "not found", requestID)
	}
}

const listingCacheKey = "/v1/events"

func (h *QueryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if h.listing != nil {
		if body, contentType, ok := h.listing.Get(listingCacheKey); ok {
			w.Header().Set("Content-Type", contentType)
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		}
	}

	events, err := h.events.ListAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestID).Msg("listing query failed")
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to load events", requestID)
		return
	}

	resp := ListResponse{Events: events, Count: len(events)}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(resp); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to encode events", requestID)
		return
	}

	if h.listing != nil {
		h.listing.Put(listingCacheKey, buf.Bytes(), "application/json")
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *QueryHandler) handleGet(w http.ResponseWriter, r *http.Request, slug string) {
	requestID := GetRequestID(r.Context())

	e, err := h.events.GetBySlug(r.Context(), slug)
	if err == store.ErrNotFound {
		writeErrorMessage(w, http.StatusNotFound, "Event not found", requestID)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestID).Str("slug", slug).Msg("detail query failed")
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to load event", requestID)
		return
	}

	writeJSON(w, http.StatusOK, e)
}

// handleSimilar is deliberately fail-soft: similarity is a nice-to-have
// surface, so an unresolved slug or a store failure yields an empty list
// rather than an error.
func (h *QueryHandler) handleSimilar(w http.ResponseWriter, r *http.Request, slug string) {
	requestID := GetRequestID(r.Context())

	events, err := h.events.FindSimilar(r.Context(), slug)
	if err != nil {
		h.log.Warn().Err(err).Str("request_id", requestID).Str("slug", slug).Msg("similarity query failed")
		events = []*event.Event{}
	}

	writeJSON(w, http.StatusOK, ListResponse{Events: events, Count: len(events)})
}
