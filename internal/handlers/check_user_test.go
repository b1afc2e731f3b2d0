package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jurek362/tbh-backend/internal/models"
	"github.com/jurek362/tbh-backend/internal/services"
)

func TestCheckUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserChecker(ctrl)

	username := "john_doe"

	tests := []struct {
		name         string
		target       string
		mockSetup    func()
		expectedCode int
		expectedBody interface{}
	}{
		{
			name:   "user exists",
			target: "/check_user?user=john_doe",
			mockSetup: func() {
				mockSvc.EXPECT().
					LookupUser(gomock.Any(), "john_doe").
					Return(&models.UserDB{UserID: uuid.New(), Username: username}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &CheckUserResponse{Exists: true, Username: &username},
		},
		{
			name:   "user does not exist",
			target: "/check_user?user=nobody",
			mockSetup: func() {
				mockSvc.EXPECT().
					LookupUser(gomock.Any(), "nobody").
					Return(nil, services.ErrUserNotFound)
			},
			expectedCode: http.StatusOK,
			expectedBody: &CheckUserResponse{Exists: false},
		},
		{
			name:   "missing user parameter",
			target: "/check_user",
			mockSetup: func() {
				mockSvc.EXPECT().
					LookupUser(gomock.Any(), "").
					Return(nil, &services.ValidationError{Field: "user", Reason: "is required"})
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: &ErrorResponse{Error: "user is required"},
		},
		{
			name:   "internal error",
			target: "/check_user?user=john_doe",
			mockSetup: func() {
				mockSvc.EXPECT().
					LookupUser(gomock.Any(), "john_doe").
					Return(nil, errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: &ErrorResponse{Error: "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			handler := NewCheckUserHandler(mockSvc)
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)

			var respBody interface{}
			if tt.expectedCode == http.StatusOK {
				respBody = &CheckUserResponse{}
			} else {
				respBody = &ErrorResponse{}
			}
			err := json.Unmarshal(w.Body.Bytes(), respBody)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBody, respBody)
		})
	}
}
