package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenService_IssueAndVerify — выпущенный токен возвращает те же claims
func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("super-secret", 30*time.Minute)
	userID := uuid.New()

	tok, err := svc.Issue(userID, "a@x.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	identity, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "a@x.com", identity.Email)
}

// TestTokenService_DefaultTTL — нулевой ttl означает срок по умолчанию
func TestTokenService_DefaultTTL(t *testing.T) {
	svc := NewTokenService("super-secret", 30*time.Minute)

	tok, err := svc.Issue(uuid.New(), "a@x.com", 0)
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	})
	require.NoError(t, err)

	expectedExpiry := time.Now().Add(30 * time.Minute)
	assert.WithinDuration(t, expectedExpiry, claims.ExpiresAt.Time, 5*time.Second)
}

// TestTokenService_Expired — просроченный токен отклоняется даже
// с корректной подписью
func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("super-secret", 30*time.Minute)

	tok, err := svc.Issue(uuid.New(), "a@x.com", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// TestTokenService_VerifyRejects — все дефектные токены дают одну и ту же ошибку
func TestTokenService_VerifyRejects(t *testing.T) {
	secret := "super-secret"
	svc := NewTokenService(secret, 30*time.Minute)
	now := time.Now()

	sign := func(secret string, claims jwt.Claims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "malformed",
			token: "not.a.jwt",
		},
		{
			name: "wrong secret",
			token: sign("another-secret", Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   uuid.NewString(),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
				Email: "a@x.com",
			}),
		},
		{
			name: "missing subject",
			token: sign(secret, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
				Email: "a@x.com",
			}),
		},
		{
			name: "missing email",
			token: sign(secret, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   uuid.NewString(),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}),
		},
		{
			name: "subject is not uuid",
			token: sign(secret, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "user-42",
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
				Email: "a@x.com",
			}),
		},
		{
			name: "no expiry at all",
			token: sign(secret, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject: uuid.NewString(),
				},
				Email: "a@x.com",
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Verify(tt.token)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

// TestTokenService_NoneAlgorithmRejected — алгоритм none не принимается
func TestTokenService_NoneAlgorithmRejected(t *testing.T) {
	svc := NewTokenService("super-secret", 30*time.Minute)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "a@x.com",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
