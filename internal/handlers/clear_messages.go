package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/services"
)

// MessageClearer defines the interface that the mailbox service must implement.
type MessageClearer interface {
	ClearMessages(ctx context.Context, ref string) (int64, error)
}

// ClearMessagesResponse reports how many messages were removed
// swagger:model ClearMessagesResponse
type ClearMessagesResponse struct {
	// Always true
	Success bool `json:"success"`

	// Number of deleted messages
	Deleted int64 `json:"deleted"`
}

// NewClearMessagesHandler returns an HTTP handler that empties a mailbox.
// Clearing an already empty mailbox succeeds with deleted=0.
// @Summary Delete all messages of a user
// @Tags messages
// @Produce json
// @Param user query string true "Username or user id"
// @Success 200 {object} handlers.ClearMessagesResponse
// @Failure 400 {object} handlers.ErrorResponse "Missing user parameter"
// @Failure 404 {object} handlers.ErrorResponse "User does not exist"
// @Router /clear_messages [delete]
func NewClearMessagesHandler(svc MessageClearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("user")

		deleted, err := svc.ClearMessages(r.Context(), ref)
		if err != nil {
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

		writeJSON(w, http.StatusOK, ClearMessagesResponse{
			Success: true,
			Deleted: deleted,
		})
	}
}
