package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
)

// RegisterPolicy selects how RegisterOrLogin treats an already registered
// username: resolve it as a login, or reject it as a conflict.
type RegisterPolicy string

const (
	PolicyLogin    RegisterPolicy = "login"
	PolicyConflict RegisterPolicy = "conflict"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 20
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// UserReader defines read-only operations for users. Absent users are
// reported as (nil, nil).
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

// UserWriter defines write operations for users. Save is an atomic
// check-and-insert: it returns the created user with created=true, or the
// already existing user with created=false.
type UserWriter interface {
	Save(ctx context.Context, username string) (*models.UserDB, bool, error)
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
}

// UserLister defines listing operations used by the admin surface and the
// health endpoint.
type UserLister interface {
	List(ctx context.Context) ([]models.UserSummary, error)
	Count(ctx context.Context) (int64, error)
}

// DirectoryService owns the user collection: registration, lookup and
// deletion (with message cascade, performed by the storage layer).
type DirectoryService struct {
	reader UserReader
	writer UserWriter
	lister UserLister
	policy RegisterPolicy
}

// NewDirectoryService creates a new DirectoryService instance.
func NewDirectoryService(reader UserReader, writer UserWriter, lister UserLister, policy RegisterPolicy) *DirectoryService {
	if policy != PolicyConflict {
		policy = PolicyLogin
	}
	return &DirectoryService{
		reader: reader,
		writer: writer,
		lister: lister,
		policy: policy,
	}
}

// RegisterOrLogin registers the username, or resolves it against the
// existing user. The second return value reports whether the user was
// created by this call. Under PolicyConflict an existing username is an
// ErrUsernameTaken error instead of a login.
func (svc *DirectoryService) RegisterOrLogin(ctx context.Context, username string) (*models.UserDB, bool, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, false, err
	}

	user, created, err := svc.writer.Save(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to save user", "username", username, "err", err)
		return nil, false, err
	}

	if !created && svc.policy == PolicyConflict {
		return nil, false, ErrUsernameTaken
	}

	return user, created, nil
}

// LookupUser resolves a user by username or by id. Pure read.
func (svc *DirectoryService) LookupUser(ctx context.Context, ref string) (*models.UserDB, error) {
	return resolveUser(ctx, svc.reader, ref)
}

// DeleteUser deletes the user and all messages addressed to it as one
// logical operation.
func (svc *DirectoryService) DeleteUser(ctx context.Context, ref string) error {
	user, err := resolveUser(ctx, svc.reader, ref)
	if err != nil {
		return err
	}

	found, err := svc.writer.Delete(ctx, user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "user_id", user.UserID, "err", err)
		return err
	}
	if !found {
		// deleted concurrently between the lookup and the delete
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns all users with their message counts.
func (svc *DirectoryService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	return svc.lister.List(ctx)
}

// CountUsers returns the total number of registered users.
func (svc *DirectoryService) CountUsers(ctx context.Context) (int64, error) {
	return svc.lister.Count(ctx)
}

// resolveUser looks a user up by id when ref parses as a UUID, otherwise
// by username. Returns ErrUserNotFound for absent users.
func resolveUser(ctx context.Context, reader UserReader, ref string) (*models.UserDB, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, newValidationError("user", "is required")
	}

	var (
		user *models.UserDB
		err  error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		user, err = reader.GetByID(ctx, id)
	} else {
		user, err = reader.GetByUsername(ctx, ref)
	}
	if err != nil {
		logger.Log.Errorw("failed to look up user", "ref", ref, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return newValidationError("username", "is required")
	case utf8.RuneCountInString(username) < usernameMinLength:
		return newValidationError("username", "must be at least 3 characters")
	case utf8.RuneCountInString(username) > usernameMaxLength:
		return newValidationError("username", "must be at most 20 characters")
	case !usernamePattern.MatchString(username):
		return newValidationError("username", "may only contain letters, digits, '_' and '-'")
	}
	return nil
}
