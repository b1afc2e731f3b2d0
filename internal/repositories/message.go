package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
)

type MessageReadRepository struct {
	db *sqlx.DB
}

func NewMessageReadRepository(db *sqlx.DB) *MessageReadRepository {
	return &MessageReadRepository{db: db}
}

// ListByRecipient returns the user's messages newest-first. With markRead
// set, the select and the read-flag update run in one transaction, and the
// update targets exactly the rows the select returned: a message committed
// between the two statements keeps its unread flag until someone views it.
// Calling twice in a row returns the same messages, all read.
func (r *MessageReadRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, markRead bool) ([]models.MessageDB, error) {
	const sel = `
		SELECT message_id, recipient_id, content, created_at, "read"
		FROM messages
		WHERE recipient_id = $1
		ORDER BY created_at DESC, message_id
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.Log.Errorw("failed to begin transaction", "error", err)
		return nil, err
	}
	defer tx.Rollback()

	msgs := make([]models.MessageDB, 0)
	if err := tx.SelectContext(ctx, &msgs, sel, recipientID); err != nil {
		logger.Log.Errorw("query failed",
			"query", strings.Join(strings.Fields(sel), " "),
			"args", []any{recipientID},
			"error", err,
		)
		return nil, err
	}

	if markRead {
		unread := make([]uuid.UUID, 0, len(msgs))
		for _, m := range msgs {
			if !m.Read {
				unread = append(unread, m.MessageID)
			}
		}
		if len(unread) > 0 {
			upd, args, err := sqlx.In(`UPDATE messages SET "read" = TRUE WHERE message_id IN (?)`, unread)
			if err != nil {
				logger.Log.Errorw("failed to build query", "error", err)
				return nil, err
			}
			upd = tx.Rebind(upd)
			if _, err := tx.ExecContext(ctx, upd, args...); err != nil {
				logger.Log.Errorw("query failed", "query", upd, "args", args, "error", err)
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Log.Errorw("failed to commit transaction", "error", err)
		return nil, err
	}

	if markRead {
		for i := range msgs {
			msgs[i].Read = true
		}
	}
	return msgs, nil
}

type MessageWriteRepository struct {
	db *sqlx.DB
}

func NewMessageWriteRepository(db *sqlx.DB) *MessageWriteRepository {
	return &MessageWriteRepository{db: db}
}

// Save resolves the recipient and inserts the message in a single
// statement, so a recipient deleted mid-flight can never leave an
// orphaned row. Returns (nil, nil) when the recipient does not exist.
func (r *MessageWriteRepository) Save(ctx context.Context, recipientUsername, content string) (*models.MessageDB, error) {
	const query = `
		INSERT INTO messages (message_id, recipient_id, content, created_at, "read")
		SELECT $1, user_id, $2, NOW(), FALSE
		FROM users
		WHERE username = $3
		RETURNING message_id, recipient_id, content, created_at, "read"
	`

	var msg models.MessageDB
	err := r.db.GetContext(ctx, &msg, query, uuid.New(), content, recipientUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("query failed",
			"query", strings.Join(strings.Fields(query), " "),
			"args", []any{recipientUsername},
			"error", err,
		)
		return nil, err
	}

	return &msg, nil
}

// DeleteByRecipient removes every message in the user's mailbox and
// returns how many were deleted.
func (r *MessageWriteRepository) DeleteByRecipient(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	const query = `DELETE FROM messages WHERE recipient_id = $1`

	res, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		logger.Log.Errorw("query failed", "query", query, "args", []any{recipientID}, "error", err)
		return 0, err
	}

	return res.RowsAffected()
}
