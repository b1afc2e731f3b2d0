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

func TestDirectoryService_RegisterOrLogin_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockLister := services.NewMockUserLister(ctrl)

	svc := services.NewDirectoryService(mockReader, mockWriter, mockLister, services.PolicyLogin)

	tests := []struct {
		name       string
		username   string
		wantReason string
	}{
		{name: "empty", username: "", wantReason: "is required"},
		{name: "whitespace only", username: "   ", wantReason: "is required"},
		{name: "too short", username: "ab", wantReason: "must be at least 3 characters"},
		{name: "too long", username: strings.Repeat("a", 21), wantReason: "must be at most 20 characters"},
		{name: "invalid characters", username: "bad name!", wantReason: "may only contain letters, digits, '_' and '-'"},
		{name: "unicode rejected", username: "żółw", wantReason: "may only contain letters, digits, '_' and '-'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, isNew, err := svc.RegisterOrLogin(context.Background(), tt.username)
			assert.Nil(t, user)
			assert.False(t, isNew)
			assert.ErrorIs(t, err, services.ErrInvalidInput)

			var ve *services.ValidationError
			assert.True(t, errors.As(err, &ve))
			assert.Equal(t, "username", ve.Field)
			assert.Equal(t, tt.wantReason, ve.Reason)
		})
	}
}

func TestDirectoryService_RegisterOrLogin_Boundaries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockLister := services.NewMockUserLister(ctrl)

	svc := services.NewDirectoryService(mockReader, mockWriter, mockLister, services.PolicyLogin)

	// 3 and 20 characters with the full allowed character class are valid.
	for _, username := range []string{"ab1", "Az0_-" + strings.Repeat("x", 15)} {
		mockWriter.EXPECT().
			Save(gomock.Any(), username).
			Return(&models.UserDB{UserID: uuid.New(), Username: username, CreatedAt: time.Now()}, true, nil)

		user, isNew, err := svc.RegisterOrLogin(context.Background(), username)
		assert.NoError(t, err)
		assert.True(t, isNew)
		assert.Equal(t, username, user.Username)
	}
}

func TestDirectoryService_RegisterOrLogin_TrimsWhitespace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockLister := services.NewMockUserLister(ctrl)

	svc := services.NewDirectoryService(mockReader, mockWriter, mockLister, services.PolicyLogin)

	mockWriter.EXPECT().
		Save(gomock.Any(), "alice").
		Return(&models.UserDB{UserID: uuid.New(), Username: "alice"}, true, nil)

	user, isNew, err := svc.RegisterOrLogin(context.Background(), "  alice  ")
	assert.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "alice", user.Username)
}

func TestDirectoryService_RegisterOrLogin_Policies(t *testing.T) {
	existing := &models.UserDB{UserID: uuid.New(), Username: "alice", CreatedAt: time.Now()}

	tests := []struct {
		name     string
		policy   services.RegisterPolicy
		created  bool
		saveErr  error
		wantUser *models.UserDB
		wantNew  bool
		wantErr  error
	}{
		{
			name:     "new user",
			policy:   services.PolicyLogin,
			created:  true,
			wantUser: existing,
			wantNew:  true,
		},
		{
			name:     "existing user treated as login",
			policy:   services.PolicyLogin,
			created:  false,
			wantUser: existing,
			wantNew:  false,
		},
		{
			name:    "existing user rejected as conflict",
			policy:  services.PolicyConflict,
			created: false,
			wantErr: services.ErrUsernameTaken,
		},
		{
			name:    "storage failure",
			policy:  services.PolicyLogin,
			saveErr: errors.New("db down"),
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			mockLister := services.NewMockUserLister(ctrl)

			svc := services.NewDirectoryService(mockReader, mockWriter, mockLister, tt.policy)

			if tt.saveErr != nil {
				mockWriter.EXPECT().Save(gomock.Any(), "alice").Return(nil, false, tt.saveErr)
			} else {
				mockWriter.EXPECT().Save(gomock.Any(), "alice").Return(existing, tt.created, nil)
			}

			user, isNew, err := svc.RegisterOrLogin(context.Background(), "alice")
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, user)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantNew, isNew)
		})
	}
}

func TestDirectoryService_LookupUser(t *testing.T) {
	alice := &models.UserDB{UserID: uuid.New(), Username: "alice"}

	t.Run("by username", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewDirectoryService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockUserLister(ctrl), services.PolicyLogin)

		mockReader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)

		user, err := svc.LookupUser(context.Background(), "alice")
		assert.NoError(t, err)
		assert.Equal(t, alice, user)
	})

	t.Run("by id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewDirectoryService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockUserLister(ctrl), services.PolicyLogin)

		mockReader.EXPECT().GetByID(gomock.Any(), alice.UserID).Return(alice, nil)

		user, err := svc.LookupUser(context.Background(), alice.UserID.String())
		assert.NoError(t, err)
		assert.Equal(t, alice, user)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewDirectoryService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockUserLister(ctrl), services.PolicyLogin)

		mockReader.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

		user, err := svc.LookupUser(context.Background(), "ghost")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, services.ErrUserNotFound)
	})

	t.Run("empty ref", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := services.NewDirectoryService(services.NewMockUserReader(ctrl), services.NewMockUserWriter(ctrl), services.NewMockUserLister(ctrl), services.PolicyLogin)

		user, err := svc.LookupUser(context.Background(), "  ")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})
}

func TestDirectoryService_DeleteUser(t *testing.T) {
	alice := &models.UserDB{UserID: uuid.New(), Username: "alice"}

	tests := []struct {
		name      string
		found     *models.UserDB
		deleted   bool
		deleteErr error
		wantErr   error
	}{
		{name: "deleted", found: alice, deleted: true},
		{name: "unknown user", found: nil, wantErr: services.ErrUserNotFound},
		{name: "deleted concurrently", found: alice, deleted: false, wantErr: services.ErrUserNotFound},
		{name: "storage failure", found: alice, deleteErr: errors.New("db down"), wantErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			svc := services.NewDirectoryService(mockReader, mockWriter, services.NewMockUserLister(ctrl), services.PolicyLogin)

			mockReader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(tt.found, nil)
			if tt.found != nil {
				mockWriter.EXPECT().Delete(gomock.Any(), alice.UserID).Return(tt.deleted, tt.deleteErr)
			}

			err := svc.DeleteUser(context.Background(), "alice")
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDirectoryService_ListAndCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLister := services.NewMockUserLister(ctrl)
	svc := services.NewDirectoryService(services.NewMockUserReader(ctrl), services.NewMockUserWriter(ctrl), mockLister, services.PolicyLogin)

	summaries := []models.UserSummary{{Username: "alice", MessagesCount: 2}}
	mockLister.EXPECT().List(gomock.Any()).Return(summaries, nil)
	mockLister.EXPECT().Count(gomock.Any()).Return(int64(1), nil)

	got, err := svc.ListUsers(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, summaries, got)

	n, err := svc.CountUsers(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
