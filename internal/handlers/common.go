package handlers

import (
	"encoding/json"
	"net/http"

	"wescape-backend/internal/apierr"
)

// Response is the uniform success envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func respondSuccess(w http.ResponseWriter, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Response{Success: true, Message: message, Data: data})
}

// respondError maps err onto the error envelope. The underlying cause is
// exposed only in debug mode.
func respondError(w http.ResponseWriter, err error, debug bool) {
	apiErr := apierr.From(err)

	resp := ErrorResponse{Message: apiErr.Message}
	if debug && apiErr.Err != nil {
		resp.Error = apiErr.Err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(resp)
}
