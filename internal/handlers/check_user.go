package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
	"github.com/jurek362/tbh-backend/internal/services"
)

// UserChecker defines the interface that the lookup service must implement.
type UserChecker interface {
	LookupUser(ctx context.Context, ref string) (*models.UserDB, error)
}

// CheckUserResponse reports whether a handle exists
// swagger:model CheckUserResponse
type CheckUserResponse struct {
	Exists bool `json:"exists"`

	// Set only when the user exists
	Username *string `json:"username"`
}

// NewCheckUserHandler returns an HTTP handler that checks handle existence.
// @Summary Check whether a user exists
// @Tags users
// @Produce json
// @Param user query string true "Username or user id"
// @Success 200 {object} handlers.CheckUserResponse
// @Failure 400 {object} handlers.ErrorResponse "Missing user parameter"
// @Router /check_user [get]
func NewCheckUserHandler(svc UserChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("user")

		user, err := svc.LookupUser(r.Context(), ref)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeJSON(w, http.StatusOK, CheckUserResponse{Exists: false})
			case errors.Is(err, services.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, CheckUserResponse{Exists: true, Username: &user.Username})
	}
}
