package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"insight-engine/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeDomainError translates a service-layer error into the matching HTTP
// status: missing resources map to 404, rejected input to 400, and backend
// outages to 503. Anything unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	var du *core.DataUnavailableError
	if errors.As(err, &du) {
		writeError(w, r, err.Error(), "DATA_UNAVAILABLE", http.StatusServiceUnavailable)
		return
	}
	writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
