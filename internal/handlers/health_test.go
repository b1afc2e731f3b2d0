package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserCounter(ctrl)

	t.Run("healthy", func(t *testing.T) {
		mockSvc.EXPECT().
			CountUsers(gomock.Any()).
			Return(int64(42), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := httptest.NewRecorder()

		NewHealthHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, int64(42), resp.UsersCount)
		assert.False(t, resp.Timestamp.IsZero())
	})

	t.Run("storage unavailable", func(t *testing.T) {
		mockSvc.EXPECT().
			CountUsers(gomock.Any()).
			Return(int64(0), errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := httptest.NewRecorder()

		NewHealthHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, "Internal server error", resp.Error)
	})
}
