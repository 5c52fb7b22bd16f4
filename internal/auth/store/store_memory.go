package store

import (
	"context"
	"sync"
	"time"

	"gatehouse/internal/auth/models"
	"gatehouse/pkg/platform/sentinel"
)

// InMemoryUserStore keeps development and tests free of external services.
// It intentionally favors clarity over performance.
type InMemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	nextID int64
}

func NewInMemory() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[int64]models.User), nextID: 1}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return sentinel.ErrConflict
		}
	}
	user.ID = s.nextID
	s.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByResetToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.ResetToken == token {
			u := user
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) UpdatePassword(_ context.Context, id int64, hash, salt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.HashedPassword = hash
	user.Salt = salt
	user.ResetToken = ""
	user.ResetTokenExpiresAt = nil
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

func (s *InMemoryUserStore) SetResetToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.ResetToken = token
	user.ResetTokenExpiresAt = &expiresAt
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}
