package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/services"
)

// UserDeleter defines the interface that the directory service must implement.
type UserDeleter interface {
	DeleteUser(ctx context.Context, ref string) error
}

// DeleteUserResponse confirms account removal
// swagger:model DeleteUserResponse
type DeleteUserResponse struct {
	// Always true
	Success bool `json:"success"`

	// default: User deleted
	Message string `json:"message"`
}

// NewDeleteUserHandler returns an HTTP handler that removes a user and
// every message addressed to them. The freed username may be registered
// again afterwards.
// @Summary Delete a user account and its mailbox
// @Tags users
// @Produce json
// @Param user query string true "Username or user id"
// @Success 200 {object} handlers.DeleteUserResponse
// @Failure 400 {object} handlers.ErrorResponse "Missing user parameter"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} handlers.ErrorResponse "User does not exist"
// @Security BearerAuth
// @Router /delete_user [delete]
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("user")

		if err := svc.DeleteUser(r.Context(), ref); err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "User does not exist")
			case errors.Is(err, services.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, DeleteUserResponse{
			Success: true,
			Message: "User deleted",
		})
	}
}
