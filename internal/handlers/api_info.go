package handlers

import "net/http"

// APIInfoResponse describes the service and its public endpoints
// swagger:model APIInfoResponse
type APIInfoResponse struct {
	// default: Tbh.fun API is running
	Message string `json:"message"`

	// default: OK
	Status string `json:"status"`

	// Public endpoints by name
	Endpoints map[string]string `json:"endpoints"`
}

// NewAPIInfoHandler returns an HTTP handler for the root endpoint.
// @Summary API info
// @Tags health
// @Produce json
// @Success 200 {object} handlers.APIInfoResponse
// @Router / [get]
func NewAPIInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, APIInfoResponse{
			Message: "Tbh.fun API is running",
			Status:  "OK",
			Endpoints: map[string]string{
				"register":       "POST /register",
				"check_user":     "GET /check_user?user=USERNAME",
				"send_message":   "POST /send_message",
				"get_messages":   "GET /get_messages?user=USERNAME",
				"clear_messages": "DELETE /clear_messages?user=USERNAME",
			},
		})
	}
}
