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

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, created_at
		FROM users
		WHERE username = $1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("query failed",
			"query", strings.Join(strings.Fields(query), " "),
			"args", []any{username},
			"error", err,
		)
		return nil, err
	}

	return &user, nil
}

func (r *UserReadRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, created_at
		FROM users
		WHERE user_id = $1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("query failed",
			"query", strings.Join(strings.Fields(query), " "),
			"args", []any{userID},
			"error", err,
		)
		return nil, err
	}

	return &user, nil
}

func (r *UserReadRepository) List(ctx context.Context) ([]models.UserSummary, error) {
	const query = `
		SELECT u.username, u.created_at, COUNT(m.message_id) AS messages_count
		FROM users u
		LEFT JOIN messages m ON m.recipient_id = u.user_id
		GROUP BY u.user_id, u.username, u.created_at
		ORDER BY u.created_at
	`

	users := make([]models.UserSummary, 0)
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		logger.Log.Errorw("query failed",
			"query", strings.Join(strings.Fields(query), " "),
			"error", err,
		)
		return nil, err
	}
	return users, nil
}

func (r *UserReadRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM users`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		logger.Log.Errorw("query failed", "query", query, "error", err)
		return 0, err
	}
	return count, nil
}

type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts the username if it is free and returns the stored row. The
// unique index on username makes the check-and-insert atomic: under a
// concurrent registration exactly one insert wins and every other call
// resolves to the winner's row with created=false.
func (r *UserWriteRepository) Save(ctx context.Context, username string) (*models.UserDB, bool, error) {
	const insert = `
		INSERT INTO users (user_id, username, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (username) DO NOTHING
		RETURNING user_id, username, created_at
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, insert, uuid.New(), username)
	if err == nil {
		return &user, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Log.Errorw("query failed",
			"query", strings.Join(strings.Fields(insert), " "),
			"args", []any{username},
			"error", err,
		)
		return nil, false, err
	}

	// Username already taken: fetch the existing row.
	const sel = `
		SELECT user_id, username, created_at
		FROM users
		WHERE username = $1
	`
	if err := r.db.GetContext(ctx, &user, sel, username); err != nil {
		logger.Log.Errorw("query failed",
			"query", strings.Join(strings.Fields(sel), " "),
			"args", []any{username},
			"error", err,
		)
		return nil, false, err
	}
	return &user, false, nil
}

// Delete removes the user; the ON DELETE CASCADE constraint on messages
// removes the mailbox in the same statement. Returns false when no such
// user exists.
func (r *UserWriteRepository) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	const query = `DELETE FROM users WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		logger.Log.Errorw("query failed", "query", query, "args", []any{userID}, "error", err)
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
