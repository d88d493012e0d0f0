package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	repo "taskKeeper/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, user_id, title, description, status, priority, due_date)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Priority,
		taskToCreate.DueDate,
	).Scan(&taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start, 50*time.Millisecond)
	return nil
}

// GetByID отдаёт задачу только её владельцу. Чужая задача неотличима
// от несуществующей — в обоих случаях ErrNotFound.
func (s *Storage) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1 AND user_id = $2`

	t := &task.Task{}
	err := s.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return t, nil
}

func (s *Storage) List(ctx context.Context, ownerID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()

	conds := []string{"user_id = $1"}
	args := []any{ownerID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s
				FROM tasks
				WHERE %s
				ORDER BY created_at DESC
				LIMIT $%d OFFSET $%d`,
		taskColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t := &task.Task{}
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.DueDate,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return tasks, nil
}

// Update выполняет частичное обновление одним запросом: нет окна между
// чтением и записью, параллельные обновления не теряют чужих полей.
func (s *Storage) Update(ctx context.Context, id, ownerID uuid.UUID, upd task.Update) (*task.Task, error) {
	start := time.Now()

	sets := []string{"updated_at = NOW()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Priority != nil {
		add("priority", *upd.Priority)
	}
	if upd.DueDate != nil {
		add("due_date", *upd.DueDate)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`UPDATE tasks
				SET %s
				WHERE id = $%d AND user_id = $%d
				RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), taskColumns)

	t := &task.Task{}
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return t, nil
}

func (s *Storage) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return false, fmt.Errorf("удаление задачи: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return tag.RowsAffected() > 0, nil
}

// CountOverdue считает открытые задачи с прошедшим дедлайном — для фонового обзора.
func (s *Storage) CountOverdue(ctx context.Context, deadline time.Time) (int64, error) {
	start := time.Now()

	query := `SELECT COUNT(*) FROM tasks
				WHERE due_date IS NOT NULL
				AND due_date < $1
				AND status IN ($2, $3)`

	var count int64
	err := s.pool.QueryRow(ctx, query, deadline, task.StatusTodo, task.StatusInProgress).Scan(&count)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать просроченные задачи", err)
		return 0, fmt.Errorf("подсчёт просроченных задач: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return count, nil
}

func warnIfSlow(start time.Time, threshold time.Duration) {
	if elapsed := time.Since(start); elapsed > threshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", elapsed))
	}
}
