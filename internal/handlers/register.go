package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
	"github.com/jurek362/tbh-backend/internal/services"
)

// Registerer defines the interface that the directory service must implement.
type Registerer interface {
	RegisterOrLogin(ctx context.Context, username string) (*models.UserDB, bool, error)
}

// RegisterRequest represents the JSON body for registration/login
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username, 3-20 characters of [A-Za-z0-9_-]
	// required: true
	// default: john_doe
	Username string `json:"username"`
}

// UserPayload is the user data returned to the frontend
// swagger:model UserPayload
type UserPayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterResponse represents a successful registration or login
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Always true
	Success bool `json:"success"`

	// Human-readable outcome
	// default: Account created
	Message string `json:"message"`

	// Whether the user was created by this call
	IsNew bool `json:"isNew"`

	Data UserPayload `json:"data"`
}

// NewRegisterHandler returns an HTTP handler for registration/login.
// @Summary Register a user handle, or log in to an existing one
// @Description Creates the user when the username is free. An existing username is resolved as a login (default policy) or rejected with 409 (conflict policy).
// @Tags users
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "Registration request"
// @Success 200 {object} handlers.RegisterResponse "Existing user logged in"
// @Success 201 {object} handlers.RegisterResponse "User created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid username"
// @Failure 409 {object} handlers.ErrorResponse "Username already taken"
// @Router /register [post]
// @Router /api/create-user [post]
func NewRegisterHandler(svc Registerer, notifier ActivityNotifier, linkBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, isNew, err := svc.RegisterOrLogin(r.Context(), req.Username)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, services.ErrUsernameTaken):
				writeError(w, http.StatusConflict, "Username already taken")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		if isNew && notifier != nil {
			ip := clientIP(r)
			notifyAsync(func(ctx context.Context) error {
				return notifier.UserRegistered(ctx, user, ip)
			})
		}

		status := http.StatusOK
		message := "Logged in"
		if isNew {
			status = http.StatusCreated
			message = "Account created"
		}
		writeJSON(w, status, RegisterResponse{
			Success: true,
			Message: message,
			IsNew:   isNew,
			Data: UserPayload{
				ID:        user.UserID.String(),
				Username:  user.Username,
				Link:      user.Link(linkBase),
				CreatedAt: user.CreatedAt,
			},
		})
	}
}
