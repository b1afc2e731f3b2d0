package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
	"github.com/jurek362/tbh-backend/internal/services"
)

// MessageSender defines the interface that the mailbox service must implement.
type MessageSender interface {
	SendMessage(ctx context.Context, recipientUsername, content string) (*models.MessageDB, error)
}

// SendMessageRequest represents the JSON body for sending a message
// swagger:model SendMessageRequest
type SendMessageRequest struct {
	// Recipient username
	// required: true
	// default: john_doe
	Recipient string `json:"recipient"`

	// Message text
	// required: true
	// default: hi there
	Message string `json:"message"`
}

// SendMessageResponse represents a delivered message
// swagger:model SendMessageResponse
type SendMessageResponse struct {
	// Always true
	Success bool `json:"success"`

	// default: Message sent
	Message string `json:"message"`
}

// NewSendMessageHandler returns an HTTP handler for anonymous delivery.
// No sender identity is read or stored.
// @Summary Send an anonymous message to a user
// @Tags messages
// @Accept json
// @Produce json
// @Param sendMessageRequest body handlers.SendMessageRequest true "Message"
// @Success 200 {object} handlers.SendMessageResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid message"
// @Failure 404 {object} handlers.ErrorResponse "Recipient does not exist"
// @Router /send_message [post]
func NewSendMessageHandler(svc MessageSender, notifier ActivityNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		msg, err := svc.SendMessage(r.Context(), req.Recipient, req.Message)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, services.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "User does not exist")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		if notifier != nil {
			recipient := req.Recipient
			notifyAsync(func(ctx context.Context) error {
				return notifier.MessageSent(ctx, msg, recipient)
			})
		}

		writeJSON(w, http.StatusOK, SendMessageResponse{
			Success: true,
			Message: "Message sent",
		})
	}
}
