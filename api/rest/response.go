package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CodeDuplicateKey = "DUPLICATE_KEY"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message *string     `json:"message"`
	Errors  []string    `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, data interface{}, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data, Message: optional(message)})
}

func created(w http.ResponseWriter, data interface{}, message string) {
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: data, Message: optional(message)})
}

func fail(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, Response{Success: false, Message: optional(message), Errors: errs})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// writeError maps a service error onto a status code and envelope.
// notFound is the message used for ErrNotFound.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFound string) {
	var (
		br  *tracker.BusinessRuleError
		ve  *tracker.ValidationError
		una *tracker.UnavailableError
	)
	switch {
	case errors.As(err, &br):
		logger.Warn("business rule violated", "path", r.URL.Path, "code", br.Code, "message", br.Message)
		fail(w, http.StatusBadRequest, br.Message, br.Code)
	case errors.As(err, &ve):
		fail(w, http.StatusBadRequest, "Validation failed", ve.Errors...)
	case errors.Is(err, tracker.ErrNotFound):
		fail(w, http.StatusNotFound, notFound)
	case errors.Is(err, tracker.ErrUnauthenticated):
		fail(w, http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, tracker.ErrForbidden):
		fail(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, tracker.ErrDuplicateKey):
		fail(w, http.StatusConflict, "A record with the same key already exists", CodeDuplicateKey)
	case errors.As(err, &una):
		logger.Error("store unavailable", "path", r.URL.Path, "op", una.Op, "resource", una.Resource, "error", una.Err)
		fail(w, http.StatusServiceUnavailable, "Service temporarily unavailable. Please retry.")
	default:
		id := middleware.CorrelationID(r.Context())
		logger.Error("unhandled error", "path", r.URL.Path, "correlationId", id, "error", err)
		fail(w, http.StatusInternalServerError, "An unexpected error occurred. Reference: "+id)
	}
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// pathID parses a hex ObjectID path segment, answering 400 when malformed.
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (primitive.ObjectID, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		fail(w, http.StatusBadRequest, label+" is required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid "+label)
		return primitive.NilObjectID, false
	}
	return id, true
}

// queryID parses an optional hex ObjectID query parameter. A malformed
// value answers 400.
func queryID(w http.ResponseWriter, r *http.Request, name, label string) (*primitive.ObjectID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid "+label)
		return nil, false
	}
	return &id, true
}
