package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jurek362/tbh-backend/internal/models"
)

// MemoryStore keeps both collections in process memory behind one mutex,
// so every operation is trivially atomic. Its Users and Messages views
// implement the same reader and writer interfaces as the Postgres
// repositories and preserve the same logical shape, including the delete
// cascade. Data does not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.UserDB
	byName   map[string]uuid.UUID
	messages map[uuid.UUID][]*models.MessageDB
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.UserDB),
		byName:   make(map[string]uuid.UUID),
		messages: make(map[uuid.UUID][]*models.MessageDB),
	}
}

// Users returns the user-collection view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

// Messages returns the message-collection view of the store.
func (s *MemoryStore) Messages() *MemoryMessageRepository {
	return &MemoryMessageRepository{store: s}
}

type MemoryUserRepository struct {
	store *MemoryStore
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.UserDB, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, nil
	}
	return cloneUser(s.users[id]), nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, userID uuid.UUID) (*models.UserDB, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]models.UserSummary, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]models.UserSummary, 0, len(s.users))
	for id, user := range s.users {
		summaries = append(summaries, models.UserSummary{
			Username:      user.Username,
			CreatedAt:     user.CreatedAt,
			MessagesCount: len(s.messages[id]),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// Save is the atomic check-and-insert: the username index lookup and the
// insert happen under one lock, so concurrent registrations of the same
// name resolve to a single user.
func (r *MemoryUserRepository) Save(_ context.Context, username string) (*models.UserDB, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[username]; ok {
		return cloneUser(s.users[id]), false, nil
	}

	user := &models.UserDB{
		UserID:    uuid.New(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	s.users[user.UserID] = user
	s.byName[username] = user.UserID
	return cloneUser(user), true, nil
}

// Delete removes the user and its whole mailbox as one operation.
func (r *MemoryUserRepository) Delete(_ context.Context, userID uuid.UUID) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	delete(s.users, userID)
	delete(s.byName, user.Username)
	delete(s.messages, userID)
	return true, nil
}

type MemoryMessageRepository struct {
	store *MemoryStore
}

// Save appends to the recipient's mailbox. Returns (nil, nil) when the
// recipient does not exist; it never creates one.
func (r *MemoryMessageRepository) Save(_ context.Context, recipientUsername, content string) (*models.MessageDB, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[recipientUsername]
	if !ok {
		return nil, nil
	}

	msg := &models.MessageDB{
		MessageID:   uuid.New(),
		RecipientID: id,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
		Read:        false,
	}
	s.messages[id] = append(s.messages[id], msg)
	return cloneMessage(msg), nil
}

// ListByRecipient returns the mailbox newest-first. The read-flag flip
// happens under the same lock as the read, so no concurrent reader can
// observe a message both unread and already marked.
func (r *MemoryMessageRepository) ListByRecipient(_ context.Context, recipientID uuid.UUID, markRead bool) ([]models.MessageDB, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.messages[recipientID]
	msgs := make([]models.MessageDB, 0, len(stored))
	for _, m := range stored {
		if markRead {
			m.Read = true
		}
		msgs = append(msgs, *cloneMessage(m))
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return messageBefore(&msgs[i], &msgs[j])
	})
	return msgs, nil
}

// messageBefore orders newest-first with message id as the tie-break, the
// same total order the Postgres backend produces.
func messageBefore(a, b *models.MessageDB) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.MessageID.String() < b.MessageID.String()
}

func (r *MemoryMessageRepository) DeleteByRecipient(_ context.Context, recipientID uuid.UUID) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := int64(len(s.messages[recipientID]))
	delete(s.messages, recipientID)
	return deleted, nil
}

func cloneUser(u *models.UserDB) *models.UserDB {
	c := *u
	return &c
}

func cloneMessage(m *models.MessageDB) *models.MessageDB {
	c := *m
	return &c
}
