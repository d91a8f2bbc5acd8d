package http

import (
	"encoding/json"
	"net/http"

	"github.com/eventdeck/eventdeck/internal/errors"
)

// ErrorResponse is the envelope for every failed API call.
type ErrorResponse struct {
	Status    string                  `json:"status"` // always "error"
	Message   string                  `json:"message"`
	Fields    []errors.FieldViolation `json:"fields,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
}

// statusForKind maps error kinds to HTTP status codes.
func statusForKind(kind errors.Kind) int {
	switch kind {
	case errors.KindValidationFailed,
		errors.KindMalformedPayload,
		errors.KindMissingImage,
		errors.KindMissingTags,
		errors.KindMissingAgenda:
		return http.StatusBadRequest
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindPersistenceFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the structured error as a JSON response, mapping its
// kind to a status code and surfacing its message and field detail.
func writeError(w http.ResponseWriter, err error, requestID string) {
	resp := ErrorResponse{
		Status:    "error",
		Message:   errors.UserMessage(err),
		Fields:    errors.GetFields(err),
		RequestID: requestID,
	}
	writeJSON(w, statusForKind(errors.GetKind(err)), resp)
}

// writeErrorStatus is writeError with an explicit status code, for cases
// where one kind spans status classes (a slug conflict is 409 but a store
// outage is 500).
func writeErrorStatus(w http.ResponseWriter, statusCode int, err error, requestID string) {
	writeJSON(w, statusCode, ErrorResponse{
		Status:    "error",
		Message:   errors.UserMessage(err),
		Fields:    errors.GetFields(err),
		RequestID: requestID,
	})
}

// writeErrorMessage writes a bare error message with the given status code.
func writeErrorMessage(w http.ResponseWriter, statusCode int, message, requestID string) {
	writeJSON(w, statusCode, ErrorResponse{
		Status:    "error",
		Message:   message,
		RequestID: requestID,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
