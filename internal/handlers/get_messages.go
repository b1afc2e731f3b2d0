package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
	"github.com/jurek362/tbh-backend/internal/services"
)

// MessageLister defines the interface that the mailbox service must implement.
type MessageLister interface {
	ListMessages(ctx context.Context, ref string, markRead bool) ([]models.MessageDB, error)
}

// GetMessagesResponse represents a user's mailbox, newest first
// swagger:model GetMessagesResponse
type GetMessagesResponse struct {
	// Always true
	Success bool `json:"success"`

	Messages []models.MessageDB `json:"messages"`

	// Number of messages returned
	Count int `json:"count"`
}

// NewGetMessagesHandler returns an HTTP handler for reading a mailbox.
// Viewing marks every returned message as read unless mark_read=false.
// @Summary List a user's messages, newest first
// @Tags messages
// @Produce json
// @Param user query string true "Username or user id"
// @Param mark_read query bool false "Mark returned messages as read (default true)"
// @Success 200 {object} handlers.GetMessagesResponse
// @Failure 400 {object} handlers.ErrorResponse "Missing user parameter"
// @Failure 404 {object} handlers.ErrorResponse "User does not exist"
// @Router /get_messages [get]
func NewGetMessagesHandler(svc MessageLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("user")

		markRead := true
		if v := r.URL.Query().Get("mark_read"); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid mark_read parameter")
				return
			}
			markRead = parsed
		}

		msgs, err := svc.ListMessages(r.Context(), ref, markRead)
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

		writeJSON(w, http.StatusOK, GetMessagesResponse{
			Success:  true,
			Messages: msgs,
			Count:    len(msgs),
		})
	}
}
