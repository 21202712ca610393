package handler

import (
	"HavirKesht_Auth/internal/logging"
	"HavirKesht_Auth/internal/model"
	"HavirKesht_Auth/internal/ports"
	"HavirKesht_Auth/internal/security"
	"context"
	"net/http"
	"time"
)

type AuthenticationHandler struct {
	service ports.AuthenticationServiceInterface
	log     logging.Logger
	timeout time.Duration
}

// TokenRequest учетные данные для входа
// swagger:model
type TokenRequest struct {
	// Имя пользователя или почта
	// example: alice
	Username string `json:"username"`
	// example: secret
	Password  string  `json:"password"`
	GrantType *string `json:"grant_type,omitempty"`
	Scope     *string `json:"scope,omitempty"`
	ClientID  *string `json:"client_id,omitempty"`
}

// RefreshTokenRequest содержит refresh токен в json формате
// swagger:model
type RefreshTokenRequest struct {
	// Refresh токен
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest текущий и новый пароль
// swagger:model
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

var (
	loginErrors = []errorStatus{
		{model.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many login attempts, try again later"},
		{model.ErrInvalidCredentials, http.StatusBadRequest, "Invalid username or password"},
		{model.ErrInactiveAccount, http.StatusBadRequest, "User is inactive"},
	}
	refreshErrors = []errorStatus{
		{model.ErrInvalidToken, http.StatusUnauthorized, "Invalid refresh token"},
		{model.ErrTokenNotFound, http.StatusUnauthorized, "Refresh token not found or expired"},
		{model.ErrInactiveAccount, http.StatusUnauthorized, "User not found or inactive"},
	}
	changePasswordErrors = []errorStatus{
		{model.ErrAccountNotFound, http.StatusNotFound, "No user found"},
		{model.ErrInvalidCredentials, http.StatusBadRequest, "Current password is incorrect"},
		{model.ErrBadRequest, http.StatusBadRequest, "New password must be 6 to 50 characters long"},
	}
)

func NewAuthenticationHandler(service ports.AuthenticationServiceInterface, log logging.Logger, timeout time.Duration) *AuthenticationHandler {
	return &AuthenticationHandler{
		service: service,
		log:     log,
		timeout: timeout,
	}
}

// Token выдает новую пару access/refresh токенов
// @Summary Вход
// @Description Проверяет имя пользователя (или почту) и пароль, завершает прежнюю сессию и открывает новую
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Учетные данные"
// @Success 200 {object} model.TokensPair
// @Failure 400 {object} ErrorResponse "неверные учетные данные или пользователь отключен"
// @Failure 429 {object} ErrorResponse "слишком много неудачных попыток"
// @Router /token [post]
func (handler *AuthenticationHandler) Token(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	var tokenRequest TokenRequest
	if err := decodeJSON(request, &tokenRequest); err != nil || tokenRequest.Username == "" || tokenRequest.Password == "" {
		writeError(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	tokensPair, err := handler.service.Login(ctx, tokenRequest.Username, tokenRequest.Password)
	if err != nil {
		writeServiceError(ctx, writer, handler.log, err, loginErrors)
		return
	}

	writeJSON(writer, http.StatusOK, tokensPair)
}

// RefreshToken обменивает refresh токен на новую пару
// @Summary Обновление токенов
// @Description Refresh токен одноразовый: после обмена повторное предъявление отклоняется
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh токен"
// @Success 200 {object} model.TokensPair
// @Failure 401 {object} ErrorResponse "невалидный, просроченный или использованный токен"
// @Router /refresh-token [post]
func (handler *AuthenticationHandler) RefreshToken(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	var refreshTokenRequest RefreshTokenRequest
	if err := decodeJSON(request, &refreshTokenRequest); err != nil || refreshTokenRequest.RefreshToken == "" {
		writeError(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	tokensPair, err := handler.service.Refresh(ctx, refreshTokenRequest.RefreshToken)
	if err != nil {
		handler.log.Info(ctx, "не удалось обновить токены", "error", err)
		writeServiceError(ctx, writer, handler.log, err, refreshErrors)
		return
	}

	writeJSON(writer, http.StatusOK, tokensPair)
}

// Logout godoc
// @Summary Выход из аккаунта
// @Description Гасит сессию по refresh токену. Повторный выход тоже успешен
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh токен"
// @Success 200 {object} MessageResponse
// @Router /logout [post]
func (handler *AuthenticationHandler) Logout(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	var logoutRequest RefreshTokenRequest
	if err := decodeJSON(request, &logoutRequest); err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := handler.service.Logout(ctx, logoutRequest.RefreshToken); err != nil {
		writeServiceError(ctx, writer, handler.log, err, nil)
		return
	}

	writeJSON(writer, http.StatusOK, &MessageResponse{Message: "Successfully logged out"})
}

// ChangePassword меняет пароль текущего пользователя
// @Summary Смена пароля
// @Description Пользователь берется из access токена. Все его сессии завершаются
// @Tags Auth
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param request body ChangePasswordRequest true "Текущий и новый пароль"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "неверный текущий пароль или некорректный новый"
// @Failure 401 {object} ErrorResponse "не авторизован"
// @Failure 404 {object} ErrorResponse "пользователь не найден"
// @Security ApiKeyAuth
// @Router /changepassword [post]
func (handler *AuthenticationHandler) ChangePassword(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	claims, ok := security.ClaimsFromContext(ctx)
	if !ok {
		writeError(writer, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var changeRequest ChangePasswordRequest
	if err := decodeJSON(request, &changeRequest); err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := handler.service.ChangePassword(ctx, claims.Subject, changeRequest.CurrentPassword, changeRequest.NewPassword)
	if err != nil {
		writeServiceError(ctx, writer, handler.log, err, changePasswordErrors)
		return
	}

	writeJSON(writer, http.StatusOK, &MessageResponse{Message: "Password changed successfully"})
}
