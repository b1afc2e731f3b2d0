package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The mark-read update must target exactly the rows the select returned,
// by id. An update scoped to the whole mailbox would flip a message that
// commits between the two statements without it ever being returned.
func TestMessageReadRepository_MarkReadScopedToSelectedRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageReadRepository(db)

	recipientID := uuid.New()
	unreadID := uuid.New()
	readID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT message_id, recipient_id, content, created_at, "read"`).
		WithArgs(recipientID).
		WillReturnRows(sqlmock.NewRows([]string{"message_id", "recipient_id", "content", "created_at", "read"}).
			AddRow(unreadID, recipientID, "new", now, false).
			AddRow(readID, recipientID, "old", now.Add(-time.Minute), true))
	// only the returned unread row's id appears in the update
	mock.ExpectExec(`UPDATE messages SET "read" = TRUE WHERE message_id IN`).
		WithArgs(unreadID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	msgs, err := repo.ListByRecipient(context.Background(), recipientID, true)
	assert.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].Read)
	assert.True(t, msgs[1].Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A fully read mailbox is listed without issuing any update at all.
func TestMessageReadRepository_MarkReadSkipsUpdateWhenAllRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageReadRepository(db)

	recipientID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT message_id, recipient_id, content, created_at, "read"`).
		WithArgs(recipientID).
		WillReturnRows(sqlmock.NewRows([]string{"message_id", "recipient_id", "content", "created_at", "read"}).
			AddRow(uuid.New(), recipientID, "seen", time.Now(), true))
	mock.ExpectCommit()

	msgs, err := repo.ListByRecipient(context.Background(), recipientID, true)
	assert.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}
