package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jurek362/tbh-backend/internal/models"
	"github.com/jurek362/tbh-backend/internal/services"
)

func newMailboxService(ctrl *gomock.Controller, maxLen int) (*services.MailboxService, *services.MockUserReader, *services.MockMessageReader, *services.MockMessageWriter) {
	users := services.NewMockUserReader(ctrl)
	reader := services.NewMockMessageReader(ctrl)
	writer := services.NewMockMessageWriter(ctrl)
	return services.NewMailboxService(users, reader, writer, maxLen), users, reader, writer
}

func TestMailboxService_SendMessage(t *testing.T) {
	saved := &models.MessageDB{
		MessageID:   uuid.New(),
		RecipientID: uuid.New(),
		Content:     "hi",
		CreatedAt:   time.Now(),
	}

	tests := []struct {
		name      string
		recipient string
		content   string
		saveMsg   *models.MessageDB
		saveErr   error
		skipSave  bool
		wantErr   error
	}{
		{name: "delivered", recipient: "alice", content: "hi", saveMsg: saved},
		{name: "trims content", recipient: "alice", content: "  hi  ", saveMsg: saved},
		{name: "unknown recipient", recipient: "bob", content: "hi", saveMsg: nil, wantErr: services.ErrUserNotFound},
		{name: "empty content", recipient: "alice", content: "   ", skipSave: true, wantErr: services.ErrInvalidInput},
		{name: "empty recipient", recipient: "", content: "hi", skipSave: true, wantErr: services.ErrInvalidInput},
		{name: "storage failure", recipient: "alice", content: "hi", saveErr: errors.New("db down"), wantErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, _, _, writer := newMailboxService(ctrl, 0)

			if !tt.skipSave {
				writer.EXPECT().
					Save(gomock.Any(), tt.recipient, strings.TrimSpace(tt.content)).
					Return(tt.saveMsg, tt.saveErr)
			}

			msg, err := svc.SendMessage(context.Background(), tt.recipient, tt.content)
			if tt.wantErr != nil {
				assert.Nil(t, msg)
				if errors.Is(tt.wantErr, services.ErrInvalidInput) || errors.Is(tt.wantErr, services.ErrUserNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.saveMsg, msg)
			assert.False(t, msg.Read)
		})
	}
}

func TestMailboxService_SendMessage_ContentLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _, writer := newMailboxService(ctrl, 1000)

	// Exactly 1000 runes is accepted. Multi-byte runes count as one
	// character each, matching how the limit is documented.
	atLimit := strings.Repeat("ż", 1000)
	writer.EXPECT().
		Save(gomock.Any(), "alice", atLimit).
		Return(&models.MessageDB{MessageID: uuid.New(), Content: atLimit}, nil)

	_, err := svc.SendMessage(context.Background(), "alice", atLimit)
	assert.NoError(t, err)

	// 1001 runes is rejected before the store is touched.
	_, err = svc.SendMessage(context.Background(), "alice", strings.Repeat("a", 1001))
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	var ve *services.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "message", ve.Field)
	assert.Equal(t, "is too long", ve.Reason)
}

func TestMailboxService_ListMessages(t *testing.T) {
	alice := &models.UserDB{UserID: uuid.New(), Username: "alice"}
	msgs := []models.MessageDB{
		{MessageID: uuid.New(), RecipientID: alice.UserID, Content: "newer", Read: true},
		{MessageID: uuid.New(), RecipientID: alice.UserID, Content: "older", Read: true},
	}

	t.Run("marks read by default path", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, users, reader, _ := newMailboxService(ctrl, 0)

		users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)
		reader.EXPECT().ListByRecipient(gomock.Any(), alice.UserID, true).Return(msgs, nil)

		got, err := svc.ListMessages(context.Background(), "alice", true)
		assert.NoError(t, err)
		assert.Equal(t, msgs, got)
	})

	t.Run("peek without marking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, users, reader, _ := newMailboxService(ctrl, 0)

		users.EXPECT().GetByID(gomock.Any(), alice.UserID).Return(alice, nil)
		reader.EXPECT().ListByRecipient(gomock.Any(), alice.UserID, false).Return(msgs, nil)

		got, err := svc.ListMessages(context.Background(), alice.UserID.String(), false)
		assert.NoError(t, err)
		assert.Equal(t, msgs, got)
	})

	t.Run("unknown user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, users, _, _ := newMailboxService(ctrl, 0)

		users.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

		got, err := svc.ListMessages(context.Background(), "ghost", true)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, services.ErrUserNotFound)
	})
}

func TestMailboxService_ClearMessages(t *testing.T) {
	alice := &models.UserDB{UserID: uuid.New(), Username: "alice"}

	t.Run("clears and counts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, users, _, writer := newMailboxService(ctrl, 0)

		users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)
		writer.EXPECT().DeleteByRecipient(gomock.Any(), alice.UserID).Return(int64(3), nil)

		deleted, err := svc.ClearMessages(context.Background(), "alice")
		assert.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
	})

	t.Run("empty mailbox is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, users, _, writer := newMailboxService(ctrl, 0)

		users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)
		writer.EXPECT().DeleteByRecipient(gomock.Any(), alice.UserID).Return(int64(0), nil)

		deleted, err := svc.ClearMessages(context.Background(), "alice")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})

	t.Run("unknown user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, users, _, _ := newMailboxService(ctrl, 0)

		users.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

		deleted, err := svc.ClearMessages(context.Background(), "ghost")
		assert.Equal(t, int64(0), deleted)
		assert.ErrorIs(t, err, services.ErrUserNotFound)
	})
}
