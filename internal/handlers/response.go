package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON error envelope shared by every endpoint
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Always false
	Success bool `json:"success"`

	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
