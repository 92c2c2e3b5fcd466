package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roomlink/roomlink-core/internal/catalog"
	"github.com/roomlink/roomlink-core/internal/dispatch"
	"github.com/roomlink/roomlink-core/internal/resolver"
	"github.com/roomlink/roomlink-core/internal/room"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeInternal   = "internal_error"
	ErrCodeValidation = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// failure is the response shape of the room dispatch endpoints: the web
// application keys off the success flag, not the HTTP status alone.
type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeFailure writes a dispatch failure with the success:false shape.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failure{Success: false, Message: message})
}

// writeDispatchError maps a dispatch/resolution error onto the room
// endpoints' failure shape.
func writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		writeFailure(w, http.StatusNotFound, "Room not found")
	case errors.Is(err, dispatch.ErrDeviceNotAssigned):
		writeFailure(w, http.StatusBadRequest, "Room does not have an IR control device assigned")
	case errors.Is(err, catalog.ErrEntryNotFound):
		writeFailure(w, http.StatusNotFound, "Command not found")
	case errors.Is(err, resolver.ErrNoMatch):
		writeFailure(w, http.StatusNotFound, "No matching command found")
	case errors.Is(err, resolver.ErrInvalidIntent):
		writeFailure(w, http.StatusBadRequest, err.Error())
	default:
		writeFailure(w, http.StatusInternalServerError, "internal server error")
	}
}
