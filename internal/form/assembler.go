package form

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/eventdeck/eventdeck/internal/errors"
	"github.com/eventdeck/eventdeck/internal/event"
)

// Image is a selected image file held in memory until submission.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Assembler maintains the transient form state: the scalar draft, the two
// ordered list fields, and the selected image. The list and image state is
// deliberately independent of scalar validation; everything is combined into
// one payload only when the user commits.
type Assembler struct {
	draft event.Draft

	// Tags and Agenda are the dynamic list fields, exposed directly so the
	// UI can bind add/remove controls to them.
	Tags   event.TagList
	Agenda event.AgendaList

	image     *Image
	validator *event.Validator
}

// NewAssembler creates an assembler with an empty draft.
func NewAssembler() *Assembler {
	return &Assembler{validator: event.NewValidator()}
}

// SetDraft replaces the scalar draft fields.
func (a *Assembler) SetDraft(d event.Draft) {
	a.draft = d
}

// Draft returns the current scalar draft.
func (a *Assembler) Draft() event.Draft {
	return a.draft
}

// AttachImage reads one file into memory, replacing any previous selection.
func (a *Assembler) AttachImage(name, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	a.image = &Image{Name: name, ContentType: contentType, Data: data}
	return nil
}

// Preview returns a data-URI representation of the selected image for local
// display. No network I/O is involved. Reports false when no image is
// selected.
func (a *Assembler) Preview() (string, bool) {
	if a.image == nil {
		return "", false
	}
	contentType := a.image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType,
		base64.StdEncoding.EncodeToString(a.image.Data)), true
}

// HasImage reports whether an image is selected.
func (a *Assembler) HasImage() bool {
	return a.image != nil
}

// Reset clears all form state back to an empty draft, as after a successful
// submission.
func (a *Assembler) Reset() {
	a.draft = event.Draft{}
	a.Tags = event.TagList{}
	a.Agenda = event.AgendaList{}
	a.image = nil
}

// CheckReady enforces the commit preconditions, returning the first failure:
// scalar validation, then image, then tags, then agenda. A nil return means
// the form may be submitted.
func (a *Assembler) CheckReady() error {
	if err := a.validator.Validate(a.draft); err != nil {
		return err
	}
	if a.image == nil {
		return errors.New(errors.KindMissingImage, "Please upload an event image")
	}
	if a.Tags.Len() == 0 {
		return errors.New(errors.KindMissingTags, "Please add at least one tag")
	}
	if a.Agenda.Len() == 0 {
		return errors.New(errors.KindMissingAgenda, "Please add at least one agenda item")
	}
	return nil
}

// Payload encodes the form state into one multipart body: scalar fields as
// plain text parts, tags and agenda as JSON-encoded arrays, and the image as
// a binary part. Callers must have passed CheckReady first.
func (a *Assembler) Payload() (contentType string, body []byte, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       a.draft.Title,
		"organizer":   a.draft.Organizer,
		"overview":    a.draft.Overview,
		"description": a.draft.Description,
		"date":        a.draft.Date,
		"time":        a.draft.Time,
		"mode":        a.draft.Mode,
		"venue":       a.draft.Venue,
		"location":    a.draft.Location,
		"audience":    a.draft.Audience,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return "", nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	tagsJSON, err := json.Marshal(a.Tags.Items())
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	if err := w.WriteField("tags", string(tagsJSON)); err != nil {
		return "", nil, fmt.Errorf("failed to write tags: %w", err)
	}

	agendaJSON, err := json.Marshal(a.Agenda.Items())
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode agenda: %w", err)
	}
	if err := w.WriteField("agenda", string(agendaJSON)); err != nil {
		return "", nil, fmt.Errorf("failed to write agenda: %w", err)
	}

	if a.image != nil {
		part, err := w.CreatePart(imagePartHeader(a.image))
		if err != nil {
			return "", nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(a.image.Data); err != nil {
			return "", nil, fmt.Errorf("failed to write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("failed to finalize payload: %w", err)
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}

// imagePartHeader builds the MIME header for the binary image part,
// carrying the original filename and content type.
func imagePartHeader(img *Image) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(img.Name)))
	if img.ContentType != "" {
		h.Set("Content-Type", img.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	return h
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
