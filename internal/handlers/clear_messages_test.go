package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/jurek362/tbh-backend/internal/services"
)

func TestClearMessagesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockMessageClearer(ctrl)

	tests := []struct {
		name         string
		target       string
		mockSetup    func()
		expectedCode int
		expectedBody interface{}
	}{
		{
			name:   "mailbox cleared",
			target: "/clear_messages?user=john_doe",
			mockSetup: func() {
				mockSvc.EXPECT().
					ClearMessages(gomock.Any(), "john_doe").
					Return(int64(3), nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &ClearMessagesResponse{Success: true, Deleted: 3},
		},
		{
			name:   "empty mailbox clears to zero",
			target: "/clear_messages?user=john_doe",
			mockSetup: func() {
				mockSvc.EXPECT().
					ClearMessages(gomock.Any(), "john_doe").
					Return(int64(0), nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &ClearMessagesResponse{Success: true, Deleted: 0},
		},
		{
			name:   "unknown user",
			target: "/clear_messages?user=nobody",
			mockSetup: func() {
				mockSvc.EXPECT().
					ClearMessages(gomock.Any(), "nobody").
					Return(int64(0), services.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: &ErrorResponse{Error: "User does not exist"},
		},
		{
			name:   "internal error",
			target: "/clear_messages?user=john_doe",
			mockSetup: func() {
				mockSvc.EXPECT().
					ClearMessages(gomock.Any(), "john_doe").
					Return(int64(0), errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: &ErrorResponse{Error: "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodDelete, tt.target, nil)
			w := httptest.NewRecorder()

			handler := NewClearMessagesHandler(mockSvc)
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)

			var respBody interface{}
			if tt.expectedCode == http.StatusOK {
				respBody = &ClearMessagesResponse{}
			} else {
				respBody = &ErrorResponse{}
			}
			err := json.Unmarshal(w.Body.Bytes(), respBody)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBody, respBody)
		})
	}
}
