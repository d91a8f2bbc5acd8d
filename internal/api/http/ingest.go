package http

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventdeck/eventdeck/internal/assets"
	"github.com/eventdeck/eventdeck/internal/errors"
	"github.com/eventdeck/eventdeck/internal/event"
	"github.com/eventdeck/eventdeck/internal/store"
)

// CreatedResponse is the envelope for a successful event submission.
type CreatedResponse struct {
	Status    string `json:"status"` // always "created"
	Slug      string `json:"slug"`
	RequestID string `json:"request_id,omitempty"`
}

// IngestHandler handles POST /v1/events multipart submissions. It
// revalidates everything the client already checked, uploads the image to
// the asset store, and persists exactly one record per successful call.
type IngestHandler struct {
	validator *event.Validator
	events    store.EventStore
	assets    assets.AssetStore
	maxBytes  int64
	log       zerolog.Logger

	now func() time.Time
}

// NewIngestHandler creates a new ingest handler. maxBytes bounds the
// multipart body size.
func NewIngestHandler(events store.EventStore, assetStore assets.AssetStore, maxBytes int64, log zerolog.Logger) *IngestHandler {
	return &IngestHandler{
		validator: event.NewValidator(),
		events:    events,
		assets:    assetStore,
		maxBytes:  maxBytes,
		log:       log,
		now:       time.Now,
	}
}

// ServeHTTP handles the event submission request.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, errors.Wrap(errors.KindMalformedPayload, "invalid multipart payload", err), requestID)
		return
	}

	draft := event.Draft{
		Title:       r.FormValue("title"),
		Organizer:   r.FormValue("organizer"),
		Overview:    r.FormValue("overview"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Mode:        r.FormValue("mode"),
		Venue:       r.FormValue("venue"),
		Location:    r.FormValue("location"),
		Audience:    r.FormValue("audience"),
	}

	// List fields travel as JSON-encoded arrays; a decode failure is a
	// malformed payload, not a validation failure.
	tags, err := decodeStringArray(r.FormValue("tags"), "tags")
	if err != nil {
		writeError(w, err, requestID)
		return
	}
	agenda, err := decodeStringArray(r.FormValue("agenda"), "agenda")
	if err != nil {
		writeError(w, err, requestID)
		return
	}

	// Never trust the client: re-run scalar validation and the list
	// invariants, surfacing every violation together.
	var violations []errors.FieldViolation
	if err := h.validator.Validate(draft); err != nil {
		violations = append(violations, errors.GetFields(err)...)
	}
	violations = append(violations, event.ListViolations(tags, agenda)...)
	if len(violations) > 0 {
		writeError(w, errors.NewValidation(violations), requestID)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, errors.New(errors.KindMissingImage, "An event image is required"), requestID)
		return
	}
	defer file.Close()
	if header.Size == 0 {
		writeError(w, errors.New(errors.KindMissingImage, "An event image is required"), requestID)
		return
	}

	imageRef, err := h.assets.Put(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestID).Msg("image upload failed")
		writeErrorStatus(w, http.StatusInternalServerError,
			errors.Wrap(errors.KindUnexpected, "Failed to store event image", err), requestID)
		return
	}

	createdAt := h.now().UTC()
	e := &event.Event{
		ID:          event.NewID(createdAt),
		Slug:        deriveSlug(draft.Title),
		Title:       draft.Title,
		Organizer:   draft.Organizer,
		Overview:    draft.Overview,
		Description: draft.Description,
		Date:        draft.Date,
		Time:        draft.Time,
		Mode:        event.Mode(draft.Mode),
		Venue:       draft.Venue,
		Location:    draft.Location,
		Audience:    draft.Audience,
		Tags:        tags,
		Agenda:      agenda,
		Image:       imageRef,
		CreatedAt:   createdAt,
	}

	if err := h.createWithSlugRetry(r, e); err != nil {
		// All-or-nothing: the record was not created, so the uploaded
		// asset must not linger either.
		if delErr := h.assets.Delete(ctx, imageRef); delErr != nil {
			h.log.Warn().Err(delErr).Str("image", imageRef).Msg("failed to roll back asset upload")
		}

		if stderrors.Is(err, store.ErrDuplicateSlug) {
			writeError(w, err, requestID)
			return
		}
		h.log.Error().Err(err).Str("request_id", requestID).Str("slug", e.Slug).Msg("event create failed")
		writeErrorStatus(w, http.StatusInternalServerError, err, requestID)
		return
	}

	h.log.Info().
		Str("request_id", requestID).
		Str("slug", e.Slug).
		Str("id", e.ID).
		Int("tags", len(e.Tags)).
		Int("agenda", len(e.Agenda)).
		Msg("event created")

	writeJSON(w, http.StatusCreated, CreatedResponse{
		Status:    "created",
		Slug:      e.Slug,
		RequestID: requestID,
	})
}

// createWithSlugRetry inserts the record, relying on the store's uniqueness
// constraint rather than a check-then-act lookup. On a slug collision it
// retries exactly once with a disambiguated slug; a second collision is
// surfaced as a persistence failure.
func (h *IngestHandler) createWithSlugRetry(r *http.Request, e *event.Event) error {
	err := h.events.Create(r.Context(), e)
	if err == nil {
		return nil
	}
	if err != store.ErrDuplicateSlug {
		return errors.Wrap(errors.KindPersistenceFailed, "Failed to create event", err)
	}

	e.Slug = event.Disambiguate(e.Slug, e.Title, e.CreatedAt.UnixNano())
	h.log.Info().Str("slug", e.Slug).Msg("slug collision, retrying with suffix")

	err = h.events.Create(r.Context(), e)
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.KindPersistenceFailed, "An event with this title already exists", err)
}

// deriveSlug returns the slug for a title, falling back to a fixed base for
// titles with no slug-safe characters at all.
func deriveSlug(title string) string {
	if slug := event.Slugify(title); slug != "" {
		return slug
	}
	return "event"
}

// decodeStringArray decodes a JSON array of strings from a form field.
func decodeStringArray(raw, field string) ([]string, error) {
	if raw == "" {
		return nil, errors.New(errors.KindMalformedPayload,
			fmt.Sprintf("%s must be a JSON array of strings", field))
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, errors.Wrap(errors.KindMalformedPayload,
			fmt.Sprintf("%s must be a JSON array of strings", field), err)
	}
	// A literal null decodes to a nil slice without error; it is not an
	// array and must not fall through to the emptiness check.
	if out == nil {
		return nil, errors.New(errors.KindMalformedPayload,
			fmt.Sprintf("%s must be a JSON array of strings", field))
	}
	return out, nil
}
