package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/user"
	repo "taskKeeper/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = `id, email, first_name, last_name, role, password_hash, email_verified, created_at, updated_at`

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Create вставляет нового пользователя. Нарушение уникальности email
// возвращается как ErrDuplicate — это последний рубеж, сервис проверяет
// дубликат ещё до вставки.
func (s *Storage) Create(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()

	query := `INSERT INTO users
				(id, email, first_name, last_name, role, password_hash, email_verified)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.ID,
		userToCreate.Email,
		userToCreate.FirstName,
		userToCreate.LastName,
		userToCreate.Role,
		userToCreate.PasswordHash,
		userToCreate.EmailVerified,
	).Scan(&userToCreate.CreatedAt, &userToCreate.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			logger.Warn("Repository: Повторная регистрация email",
				zap.String("email", userToCreate.Email))
			return repo.ErrDuplicate
		}
		logger.Error("Repository: Не удалось создать пользователя", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("создание пользователя: %w", err)
	}

	warnIfSlow(start, 50*time.Millisecond)
	return nil
}

// GetByEmail ищет по точному совпадению — email чувствителен к регистру.
func (s *Storage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	start := time.Now()

	query := `SELECT ` + userColumns + `
				FROM users
				WHERE email = $1`

	u, err := s.scanUser(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return u, nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	start := time.Now()

	query := `SELECT ` + userColumns + `
				FROM users
				WHERE id = $1`

	u, err := s.scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return u, nil
}

func (s *Storage) scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.PasswordHash,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func warnIfSlow(start time.Time, threshold time.Duration) {
	if elapsed := time.Since(start); elapsed > threshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", elapsed))
	}
}
