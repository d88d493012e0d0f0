package handlers

import (
	"context"
	"time"

	"taskKeeper/internal/models/task"
	"taskKeeper/internal/models/user"

	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, email, password string, firstName, lastName *string) (*user.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, string, error)
}

type TaskService interface {
	CreateNewTask(ctx context.Context, ownerID uuid.UUID, title string, description *string, status task.Status, priority task.Priority, dueDate *time.Time) (*task.Task, error)
	GetTaskByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID, filter task.Filter) ([]*task.Task, error)
	UpdateTaskByID(ctx context.Context, id, ownerID uuid.UUID, upd task.Update) (*task.Task, error)
	DeleteTaskByID(ctx context.Context, id, ownerID uuid.UUID) error
	HealthCheck(ctx context.Context) error
}
