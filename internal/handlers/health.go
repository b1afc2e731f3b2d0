package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jurek362/tbh-backend/internal/logger"
)

// UserCounter defines the interface that the directory service must implement.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// HealthResponse reports service liveness
// swagger:model HealthResponse
type HealthResponse struct {
	// default: ok
	Status string `json:"status"`

	Timestamp time.Time `json:"timestamp"`

	// Number of registered users
	UsersCount int64 `json:"users_count"`
}

// NewHealthHandler returns an HTTP handler for the health probe.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse
// @Router /api/health [get]
func NewHealthHandler(svc UserCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.CountUsers(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{
			Status:     "ok",
			Timestamp:  time.Now().UTC(),
			UsersCount: count,
		})
	}
}
