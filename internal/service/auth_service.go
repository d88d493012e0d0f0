package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskKeeper/internal/auth"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/user"
	rep "taskKeeper/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	users      UserRepository
	hasher     *auth.Hasher
	tokens     *auth.TokenService
	sessionTTL time.Duration

	// хеш несуществующего пароля, чтобы проверка по неизвестному email
	// занимала столько же времени, сколько по известному
	dummyHash string
}

func NewAuthService(users UserRepository, hasher *auth.Hasher, tokens *auth.TokenService, sessionTTL time.Duration) (*AuthService, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("подготовка сервиса авторизации: %w", err)
	}

	return &AuthService{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		dummyHash:  dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, email, password string, firstName, lastName *string) (*user.User, string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("хеширование пароля: %w", err)
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         user.RoleUser,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, rep.ErrDuplicate) {
			logger.Info("Service: Повторная регистрация", zap.String("email", email))
			return nil, "", NewDuplicateEmail(email)
		}
		return nil, "", fmt.Errorf("создание пользователя: %w", err)
	}

	token, err := s.tokens.Issue(newUser.ID, newUser.Email, s.sessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("выпуск токена: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.String("user_id", newUser.ID.String()))
	return newUser, token, nil
}

// Authenticate возвращает один и тот же BusinessError и для неизвестного
// email, и для неверного пароля.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*user.User, string, error) {
	found, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			s.hasher.Check(password, s.dummyHash)
			return nil, "", NewUnauthorized("неверный email или пароль")
		}
		return nil, "", fmt.Errorf("поиск пользователя: %w", err)
	}

	if !s.hasher.Check(password, found.PasswordHash) {
		logger.Info("Service: Неудачная попытка входа", zap.String("user_id", found.ID.String()))
		return nil, "", NewUnauthorized("неверный email или пароль")
	}

	token, err := s.tokens.Issue(found.ID, found.Email, s.sessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("выпуск токена: %w", err)
	}

	return found, token, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	found, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("пользователь", id.String())
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return found, nil
}
