package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	rep "taskKeeper/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	maxTitleLen = 255
)

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

// CreateNewTask создаёт задачу от имени ownerID. Владелец берётся только из
// контекста вызова, из тела запроса его подменить нельзя.
func (s *TaskService) CreateNewTask(ctx context.Context, ownerID uuid.UUID, title string, description *string, status task.Status, priority task.Priority, dueDate *time.Time) (*task.Task, error) {
	if title == "" {
		return nil, NewValidationError("title", "обязательное поле")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, NewValidationError("title", fmt.Sprintf("длиннее %d символов", maxTitleLen))
	}
	if status == "" {
		status = task.StatusTodo
	}
	if !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("недопустимое значение %q", status))
	}
	if priority == "" {
		priority = task.PriorityMedium
	}
	if !priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("недопустимое значение %q", priority))
	}

	newTask := &task.Task{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.ID.String()),
		zap.String("user_id", ownerID.String()),
	)
	return newTask, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return found, nil
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("недопустимое значение %q", *filter.Status))
	}
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("недопустимое значение %q", *filter.Priority))
	}
	if filter.Offset < 0 {
		return nil, NewValidationError("offset", "не может быть отрицательным")
	}
	if filter.Limit < 0 {
		return nil, NewValidationError("limit", "не может быть отрицательным")
	}
	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	tasks, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// UpdateTaskByID применяет изменения одним запросом к хранилищу, без
// предварительного чтения. Поля со значением nil остаются нетронутыми.
func (s *TaskService) UpdateTaskByID(ctx context.Context, id, ownerID uuid.UUID, upd task.Update) (*task.Task, error) {
	if upd.Empty() {
		return nil, NewValidationError("body", "нет полей для обновления")
	}
	if upd.Title != nil && *upd.Title == "" {
		return nil, NewValidationError("title", "не может быть пустым")
	}
	if upd.Title != nil && utf8.RuneCountInString(*upd.Title) > maxTitleLen {
		return nil, NewValidationError("title", fmt.Sprintf("длиннее %d символов", maxTitleLen))
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("недопустимое значение %q", *upd.Status))
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("недопустимое значение %q", *upd.Priority))
	}

	updated, err := s.repo.Update(ctx, id, ownerID, upd)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return updated, nil
}

func (s *TaskService) DeleteTaskByID(ctx context.Context, id, ownerID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if !deleted {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		return NewNotFound("задача", id.String())
	}
	return nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
