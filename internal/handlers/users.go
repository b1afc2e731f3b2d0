package handlers

import (
	"context"
	"net/http"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
)

// UsersLister defines the interface that the directory service must implement.
type UsersLister interface {
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
}

// UsersResponse lists every registered user with mailbox sizes
// swagger:model UsersResponse
type UsersResponse struct {
	// Always true
	Success bool `json:"success"`

	Users []models.UserSummary `json:"users"`

	// Number of users returned
	Count int `json:"count"`
}

// NewUsersHandler returns an HTTP handler for the admin user listing.
// @Summary List all registered users
// @Tags admin
// @Produce json
// @Success 200 {object} handlers.UsersResponse
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Security BearerAuth
// @Router /api/users [get]
func NewUsersHandler(svc UsersLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, UsersResponse{
			Success: true,
			Users:   users,
			Count:   len(users),
		})
	}
}
