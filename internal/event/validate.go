package event

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eventdeck/eventdeck/internal/errors"
)

// Draft holds the scalar submission fields before they are accepted into a
// record. The list fields (tags, agenda) and the image are held separately by
// the submission assembler; they are not fixed-arity scalar inputs and follow
// their own rules.
type Draft struct {
	Title       string `json:"title" validate:"required,min=5,max=100"`
	Organizer   string `json:"organizer" validate:"required,min=2"`
	Overview    string `json:"overview" validate:"required,min=10,max=500"`
	Description string `json:"description" validate:"required,min=20,max=1000"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Mode        string `json:"mode" validate:"required,oneof=online offline hybrid"`
	Venue       string `json:"venue" validate:"required,min=2"`
	Location    string `json:"location" validate:"required,min=2"`
	Audience    string `json:"audience" validate:"required,min=2"`
}

// fieldMessages maps field/constraint pairs to the messages surfaced to
// users. Constraints without an entry fall back to a generic message.
var fieldMessages = map[string]string{
	"title/required":       "Title must be at least 5 characters",
	"title/min":            "Title must be at least 5 characters",
	"title/max":            "Title must be at most 100 characters",
	"organizer/required":   "Organizer name is too short",
	"organizer/min":        "Organizer name is too short",
	"overview/required":    "Overview should be at least 10 characters",
	"overview/min":         "Overview should be at least 10 characters",
	"overview/max":         "Overview must be at most 500 characters",
	"description/required": "Description should be more detailed",
	"description/min":      "Description should be more detailed",
	"description/max":      "Description must be at most 1000 characters",
	"date/required":        "Date is required",
	"time/required":        "Time is required",
	"mode/required":        "Mode must be online, offline, or hybrid",
	"mode/oneof":           "Mode must be online, offline, or hybrid",
	"venue/required":       "Venue is required",
	"venue/min":            "Venue is required",
	"location/required":    "Location is required",
	"location/min":         "Location is required",
	"audience/required":    "Target audience is required",
	"audience/min":         "Target audience is required",
}

// Validator evaluates the declarative constraints on a Draft. Each field is
// checked independently so all violations are surfaced together.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns nil when the draft satisfies every constraint, or a
// ValidationFailed error carrying one violation per failing field.
func (v *Validator) Validate(d Draft) error {
	err := v.validate.Struct(d)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.KindUnexpected, "validator failed", err)
	}

	violations := make([]errors.FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, errors.FieldViolation{
			Field:      fe.Field(),
			Constraint: fe.Tag(),
			Message:    violationMessage(fe.Field(), fe.Tag()),
		})
	}
	return errors.NewValidation(violations)
}

func violationMessage(field, constraint string) string {
	if msg, ok := fieldMessages[field+"/"+constraint]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}

// ListViolations checks the record-level invariants on the decoded list
// fields: tags must be non-empty and free of duplicates, agenda must be
// non-empty. A well-behaved client never sends violating lists; the server
// checks anyway.
func ListViolations(tags, agenda []string) []errors.FieldViolation {
	var violations []errors.FieldViolation

	if len(tags) == 0 {
		violations = append(violations, errors.FieldViolation{
			Field:      "tags",
			Constraint: "min",
			Message:    "Please add at least one tag",
		})
	} else {
		seen := make(map[string]struct{}, len(tags))
		for _, tag := range tags {
			if _, dup := seen[tag]; dup {
				violations = append(violations, errors.FieldViolation{
					Field:      "tags",
					Constraint: "unique",
					Message:    fmt.Sprintf("Duplicate tag %q", tag),
				})
				break
			}
			seen[tag] = struct{}{}
		}
	}

	if len(agenda) == 0 {
		violations = append(violations, errors.FieldViolation{
			Field:      "agenda",
			Constraint: "min",
			Message:    "Please add at least one agenda item",
		})
	}

	return violations
}
