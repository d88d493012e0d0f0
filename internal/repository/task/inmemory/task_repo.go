package inmemory

import (
	"context"
	"sync"
	"time"

	"taskKeeper/internal/models/task"
	repo "taskKeeper/internal/repository"

	"github.com/google/uuid"
)

// TaskStorage — потокобезопасное хранилище в памяти. Используется в тестах
// и при repository.type = inmemory.
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	ids     []uuid.UUID
	mtx     sync.RWMutex
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	stored := *taskToCreate
	s.storage[stored.ID] = &stored
	s.ids = append(s.ids, stored.ID)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.storage[id]
	if !ok || stored.UserID != ownerID {
		// чужая задача выглядит как несуществующая
		return nil, repo.ErrNotFound
	}

	result := *stored
	return &result, nil
}

func (s *TaskStorage) List(ctx context.Context, ownerID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*task.Task{}
	// свежесозданные в конце списка ids, а отдаём от новых к старым
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.storage[s.ids[i]]
		if t.UserID != ownerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		matched = append(matched, t)
	}

	if filter.Offset >= len(matched) {
		return []*task.Task{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	result := make([]*task.Task, len(matched))
	for i, t := range matched {
		copied := *t
		result[i] = &copied
	}
	return result, nil
}

func (s *TaskStorage) Update(ctx context.Context, id, ownerID uuid.UUID, upd task.Update) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.storage[id]
	if !ok || stored.UserID != ownerID {
		return nil, repo.ErrNotFound
	}

	if upd.Title != nil {
		stored.Title = *upd.Title
	}
	if upd.Description != nil {
		stored.Description = upd.Description
	}
	if upd.Status != nil {
		stored.Status = *upd.Status
	}
	if upd.Priority != nil {
		stored.Priority = *upd.Priority
	}
	if upd.DueDate != nil {
		stored.DueDate = upd.DueDate
	}
	stored.UpdatedAt = time.Now()

	result := *stored
	return &result, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.storage[id]
	if !ok || stored.UserID != ownerID {
		return false, nil
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return true, nil
}

func (s *TaskStorage) CountOverdue(ctx context.Context, deadline time.Time) (int64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var count int64
	for _, t := range s.storage {
		if t.Open() && t.DueDate != nil && t.DueDate.Before(deadline) {
			count++
		}
	}
	return count, nil
}
