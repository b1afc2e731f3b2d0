package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
)

// DefaultMaxContentLength bounds message content when no limit is
// configured.
const DefaultMaxContentLength = 1000

// MessageReader defines read operations for a user's mailbox.
// ListByRecipient returns the messages newest-first; with markRead set,
// every returned unread message is flipped to read atomically with the
// read itself.
type MessageReader interface {
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, markRead bool) ([]models.MessageDB, error)
}

// MessageWriter defines write operations for messages. Save resolves the
// recipient and inserts the message in one atomic step; it returns
// (nil, nil) when the recipient does not exist. It never creates the
// recipient.
type MessageWriter interface {
	Save(ctx context.Context, recipientUsername, content string) (*models.MessageDB, error)
	DeleteByRecipient(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

// MailboxService owns the message collection: anonymous delivery, listing
// with viewing-marks-as-read semantics, and bulk clearing.
type MailboxService struct {
	users  UserReader
	reader MessageReader
	writer MessageWriter
	maxLen int
}

// NewMailboxService creates a new MailboxService instance.
// maxContentLength <= 0 selects DefaultMaxContentLength.
func NewMailboxService(users UserReader, reader MessageReader, writer MessageWriter, maxContentLength int) *MailboxService {
	if maxContentLength <= 0 {
		maxContentLength = DefaultMaxContentLength
	}
	return &MailboxService{
		users:  users,
		reader: reader,
		writer: writer,
		maxLen: maxContentLength,
	}
}

// SendMessage delivers an anonymous message to the recipient's mailbox.
func (svc *MailboxService) SendMessage(ctx context.Context, recipientUsername, content string) (*models.MessageDB, error) {
	recipientUsername = strings.TrimSpace(recipientUsername)
	content = strings.TrimSpace(content)

	if recipientUsername == "" {
		return nil, newValidationError("recipient", "is required")
	}
	if err := svc.validateContent(content); err != nil {
		return nil, err
	}

	msg, err := svc.writer.Save(ctx, recipientUsername, content)
	if err != nil {
		logger.Log.Errorw("failed to save message", "recipient", recipientUsername, "err", err)
		return nil, err
	}
	if msg == nil {
		return nil, ErrUserNotFound
	}
	return msg, nil
}

// ListMessages returns the user's messages newest-first. With markRead set
// (the caller's default), viewing marks every returned message as read;
// the call is idempotent with respect to the read flag.
func (svc *MailboxService) ListMessages(ctx context.Context, ref string, markRead bool) ([]models.MessageDB, error) {
	user, err := resolveUser(ctx, svc.users, ref)
	if err != nil {
		return nil, err
	}
	return svc.reader.ListByRecipient(ctx, user.UserID, markRead)
}

// ClearMessages deletes every message in the user's mailbox and returns
// the number deleted.
func (svc *MailboxService) ClearMessages(ctx context.Context, ref string) (int64, error) {
	user, err := resolveUser(ctx, svc.users, ref)
	if err != nil {
		return 0, err
	}

	deleted, err := svc.writer.DeleteByRecipient(ctx, user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to clear messages", "user_id", user.UserID, "err", err)
		return 0, err
	}
	return deleted, nil
}

func (svc *MailboxService) validateContent(content string) error {
	switch {
	case content == "":
		return newValidationError("message", "is required")
	case utf8.RuneCountInString(content) > svc.maxLen:
		return newValidationError("message", "is too long")
	}
	return nil
}
