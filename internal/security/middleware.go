package security

import (
	"HavirKesht_Auth/internal/logging"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey struct{}

var claimsContextKey = contextKey{}

// Authenticator проверяет access токен. Реализуется сервисом аутентификации,
// который помимо подписи требует наличия активной сессии
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*Claims, error)
}

func JWTMiddleware(authenticator Authenticator, log logging.Logger) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(authenticator, log, next))
	}
}

func handleAuthentication(authenticator Authenticator, log logging.Logger, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			unauthorized(writer)
			return
		}

		jwtTokenStr := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, "Bearer "))

		claims, err := authenticator.Authenticate(request.Context(), jwtTokenStr)
		if err != nil {
			log.Warn(request.Context(), "невалидный токен", "error", err)
			unauthorized(writer)
			return
		}

		next.ServeHTTP(writer, request.WithContext(ContextWithClaims(request.Context(), claims)))
	}
}

func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext достает claims, положенные JWTMiddleware
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

func unauthorized(writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	writer.Header().Set("WWW-Authenticate", "Bearer")
	writer.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(writer).Encode(map[string]string{"detail": "Could not validate credentials"})
}
