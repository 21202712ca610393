package security

import (
	"HavirKesht_Auth/internal/logging"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	args := m.Called(ctx, accessToken)
	claims, _ := args.Get(0).(*Claims)
	return claims, args.Error(1)
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims, ok := ClaimsFromContext(request.Context())
		if assert.True(t, ok) {
			_, _ = writer.Write([]byte(claims.Subject))
		}
	})
}

// 1
func TestJWTMiddleware_MissingHeader(t *testing.T) {
	authenticator := new(MockAuthenticator)
	handler := JWTMiddleware(authenticator, logging.Nop())(protectedHandler(t))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, recorder.Body.String())
	authenticator.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

// 2
func TestJWTMiddleware_RejectedToken(t *testing.T) {
	authenticator := new(MockAuthenticator)
	authenticator.On("Authenticate", mock.Anything, "revoked").Return(nil, errors.New("invalid token"))
	handler := JWTMiddleware(authenticator, logging.Nop())(protectedHandler(t))

	request := httptest.NewRequest(http.MethodGet, "/users", nil)
	request.Header.Set("Authorization", "Bearer revoked")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))
}

// 3
func TestJWTMiddleware_PassesClaims(t *testing.T) {
	authenticator := new(MockAuthenticator)
	authenticator.On("Authenticate", mock.Anything, "good").
		Return(&Claims{Type: TokenKindAccess, RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}, nil)
	handler := JWTMiddleware(authenticator, logging.Nop())(protectedHandler(t))

	request := httptest.NewRequest(http.MethodGet, "/users", nil)
	request.Header.Set("Authorization", "Bearer good")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "user-1", recorder.Body.String())
}
