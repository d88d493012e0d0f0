package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"taskKeeper/internal/auth"
	"taskKeeper/internal/logger"

	"go.uber.org/zap"
)

const identityKey contextKey = "identity"

type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// Auth пропускает дальше только запросы с валидным bearer-токеном.
// Любой дефект токена даёт одинаковый 401, без уточнения причины.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r.Header.Get("Authorization"))
			if raw == "" {
				unauthorized(w, r)
				return
			}

			identity, err := verifier.Verify(raw)
			if err != nil {
				logger.Info("HTTP: Отклонён токен",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
				)
				unauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity достаёт личность из контекста. Второе значение false означает,
// что запрос не проходил через Auth.
func GetIdentity(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    "Требуется авторизация",
		"request_id": GetRequestID(r.Context()),
	})
}
