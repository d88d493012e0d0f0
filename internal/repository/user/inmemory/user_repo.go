package inmemory

import (
	"context"
	"sync"
	"time"

	"taskKeeper/internal/models/user"
	repo "taskKeeper/internal/repository"

	"github.com/google/uuid"
)

// UserStorage — хранилище пользователей в памяти с индексом по email.
type UserStorage struct {
	storage map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
	mtx     sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.byEmail[userToCreate.Email]; exists {
		return repo.ErrDuplicate
	}

	now := time.Now()
	userToCreate.CreatedAt = now
	userToCreate.UpdatedAt = now

	stored := *userToCreate
	s.storage[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}

	result := *s.storage[id]
	return &result, nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	result := *stored
	return &result, nil
}
