package facades

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
)

// UserReader is the read side the cache sits in front of.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

// UserWriter is the write side the cache invalidates through.
type UserWriter interface {
	Save(ctx context.Context, username string) (*models.UserDB, bool, error)
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
}

// UserCacheFacade is a read-through Redis cache over user lookups. Writes
// pass through to the underlying repository and invalidate the affected
// keys. Cache failures only cost the speedup: reads fall back to the
// repository and invalidation problems expire with the TTL.
type UserCacheFacade struct {
	rdb    *redis.Client
	reader UserReader
	writer UserWriter
	ttl    time.Duration
}

// NewUserCacheFacade creates a new facade. ttl <= 0 selects one minute.
func NewUserCacheFacade(rdb *redis.Client, reader UserReader, writer UserWriter, ttl time.Duration) *UserCacheFacade {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UserCacheFacade{rdb: rdb, reader: reader, writer: writer, ttl: ttl}
}

func (f *UserCacheFacade) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	key := nameKey(username)
	if user := f.cached(ctx, key); user != nil {
		return user, nil
	}

	user, err := f.reader.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return user, err
	}
	f.store(ctx, user)
	return user, nil
}

func (f *UserCacheFacade) GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	key := idKey(userID)
	if user := f.cached(ctx, key); user != nil {
		return user, nil
	}

	user, err := f.reader.GetByID(ctx, userID)
	if err != nil || user == nil {
		return user, err
	}
	f.store(ctx, user)
	return user, nil
}

func (f *UserCacheFacade) Save(ctx context.Context, username string) (*models.UserDB, bool, error) {
	user, created, err := f.writer.Save(ctx, username)
	if err == nil && user != nil {
		f.invalidate(ctx, user)
	}
	return user, created, err
}

func (f *UserCacheFacade) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	// resolve the username before the row disappears, so the name key
	// can be dropped too
	user, err := f.reader.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	found, err := f.writer.Delete(ctx, userID)
	if err == nil && user != nil {
		f.invalidate(ctx, user)
	}
	return found, err
}

func (f *UserCacheFacade) cached(ctx context.Context, key string) *models.UserDB {
	payload, err := f.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warnw("user cache read failed", "key", key, "err", err)
		}
		return nil
	}

	var user models.UserDB
	if err := json.Unmarshal(payload, &user); err != nil {
		logger.Log.Warnw("user cache entry corrupt", "key", key, "err", err)
		return nil
	}
	return &user
}

func (f *UserCacheFacade) store(ctx context.Context, user *models.UserDB) {
	payload, err := json.Marshal(user)
	if err != nil {
		return
	}
	pipe := f.rdb.Pipeline()
	pipe.Set(ctx, nameKey(user.Username), payload, f.ttl)
	pipe.Set(ctx, idKey(user.UserID), payload, f.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.Warnw("user cache write failed", "username", user.Username, "err", err)
	}
}

func (f *UserCacheFacade) invalidate(ctx context.Context, user *models.UserDB) {
	if err := f.rdb.Del(ctx, nameKey(user.Username), idKey(user.UserID)).Err(); err != nil {
		logger.Log.Warnw("user cache invalidation failed", "username", user.Username, "err", err)
	}
}

func nameKey(username string) string { return "user:name:" + username }

func idKey(userID uuid.UUID) string { return "user:id:" + userID.String() }
