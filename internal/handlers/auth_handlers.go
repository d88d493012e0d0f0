package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskKeeper/internal/handlers/dto"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/middleware"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return AuthHandler{
		AuthService: authService,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if !validEmail(request.Email) {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "email"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверный формат email")
		return
	}

	if !validPassword(request.Password) {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "password"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "пароль должен быть от 8 до 72 символов")
		return
	}

	if !validName(request.FirstName) || !validName(request.LastName) {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "first_name/last_name"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "имя и фамилия не длиннее 100 символов")
		return
	}

	logger.Info("HTTP: Вызов сервиса регистрации")
	newUser, token, err := h.AuthService.Register(r.Context(), request.Email, request.Password, request.FirstName, request.LastName)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}

		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "register"),
			zap.Duration("ms", time.Since(start)))

		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", newUser.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.FromUser(newUser),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if request.Email == "" || request.Password == "" {
		responseWithError(w, http.StatusBadRequest, "email и пароль обязательны")
		return
	}

	logger.Info("HTTP: Вызов сервиса аутентификации")
	found, token, err := h.AuthService.Authenticate(r.Context(), request.Email, request.Password)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}

		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "login"),
			zap.Duration("ms", time.Since(start)))

		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.String("user_id", found.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.FromUser(found),
	})
}

// Logout ничего не инвалидирует: токены живут до истечения срока.
// Ручка оставлена для симметрии клиентского API.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Logout")

	responseWithJSON(w, http.StatusOK, toPayload("message", "выход выполнен"))
}

// Verify отвечает только по данным токена, без похода в хранилище.
// Роль и email_verified в claims не едут, в ответе они синтезированы.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "требуется авторизация")
		return
	}

	logger.Info("HTTP_OUT: Токен подтверждён",
		zap.String("user_id", identity.UserID.String()))

	responseWithBody(w, http.StatusOK, dto.FromClaims(identity.UserID, identity.Email))
}
