package service

import (
	"context"
	"time"

	"taskKeeper/internal/models/task"
	"taskKeeper/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, filter task.Filter) ([]*task.Task, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, upd task.Update) (*task.Task, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	CountOverdue(ctx context.Context, deadline time.Time) (int64, error)
	HealthCheck(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}
