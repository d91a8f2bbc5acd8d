// Package event provides the core data types for Eventdeck: the persisted
// event record, the scalar submission draft and its validation, the ordered
// list value objects backing tags and agendas, and slug derivation.
package event

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// Mode is the attendance mode of an event.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// Event is the canonical persisted event record. Records are immutable once
// created: there is no edit or delete path.
type Event struct {
	// ID is the ULID primary key (time-ordered, lexicographically sortable).
	ID string `json:"id" bson:"_id"`

	// Slug is the unique URL-safe identifier derived from Title. It is the
	// external lookup key for detail and similarity queries.
	Slug string `json:"slug" bson:"slug"`

	Title       string `json:"title" bson:"title"`
	Organizer   string `json:"organizer" bson:"organizer"`
	Overview    string `json:"overview" bson:"overview"`
	Description string `json:"description" bson:"description"`

	// Date and Time are the calendar date and time-of-day strings exactly as
	// submitted (e.g. "2026-06-12", "09:00").
	Date string `json:"date" bson:"date"`
	Time string `json:"time" bson:"time"`

	Mode     Mode   `json:"mode" bson:"mode"`
	Venue    string `json:"venue" bson:"venue"`
	Location string `json:"location" bson:"location"`
	Audience string `json:"audience" bson:"audience"`

	// Tags is an ordered sequence of unique strings (case-sensitive, as
	// typed). At least one entry is required.
	Tags []string `json:"tags" bson:"tags"`

	// Agenda is an ordered sequence of schedule entries. Insertion order is
	// chronological and therefore significant; duplicate text is permitted.
	Agenda []string `json:"agenda" bson:"agenda"`

	// Image is the durable asset reference returned by the asset store.
	Image string `json:"image" bson:"image"`

	// CreatedAt is server-assigned at creation and drives listing order.
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// idMu guards the shared monotonic entropy source, which is not safe for
// concurrent use.
var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID generates a ULID string for a new event record. IDs generated within
// the same millisecond are monotonically increasing.
func NewID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
