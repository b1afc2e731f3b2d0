package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/jurek362/tbh-backend/internal/logger"
)

// TokenIssuer defines the interface that the jwt service must implement.
type TokenIssuer interface {
	Generate(ctx context.Context, subject string) (string, error)
}

// AdminLoginRequest represents the JSON body for an admin login
// swagger:model AdminLoginRequest
type AdminLoginRequest struct {
	// required: true
	// default: admin
	Username string `json:"username"`

	// required: true
	Password string `json:"password"`
}

// AdminLoginResponse carries the issued access token
// swagger:model AdminLoginResponse
type AdminLoginResponse struct {
	// Always true
	Success bool `json:"success"`

	// JWT access token
	Token string `json:"token"`
}

// NewAdminLoginHandler returns an HTTP handler that exchanges the admin
// credentials for a bearer token. passwordHash is a bcrypt hash of the
// admin password, never the password itself.
// @Summary Log in as the administrator
// @Tags admin
// @Accept json
// @Produce json
// @Param adminLoginRequest body handlers.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} handlers.AdminLoginResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ErrorResponse "Invalid credentials"
// @Router /admin/login [post]
func NewAdminLoginHandler(issuer TokenIssuer, username, passwordHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.Username != username ||
			bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := issuer.Generate(r.Context(), req.Username)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, AdminLoginResponse{Success: true, Token: token})
	}
}
