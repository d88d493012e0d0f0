package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken — единственная ошибка проверки токена. Какая именно
// проверка не прошла (подпись, структура, срок, отсутствующие claims),
// наружу не сообщается.
var ErrInvalidToken = errors.New("недействительный токен")

// Claims — стандартные утверждения плюс email пользователя.
// Идентификатор пользователя едет в Subject.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity — проверенные данные из токена.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// TokenService выпускает и проверяет подписанные HS256-токены.
// Секрет общий для процесса, после старта не меняется.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
}

func NewTokenService(secret string, defaultTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
	}
}

// Issue выпускает токен на ttl. Нулевой ttl означает срок
// по умолчанию из конфигурации.
func (s *TokenService) Issue(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	})

	return token.SignedString(s.secret)
}

// Verify принимает только токены с валидной подписью, непрошедшим сроком
// и обязательными claims (sub в виде UUID, email). Любой дефект — ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: userID, Email: claims.Email}, nil
}
