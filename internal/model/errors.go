package model

import "errors"

// Ошибки предметной области. Сравнивать через errors.Is,
// обработчики HTTP переводят их в коды ответа
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found or already used")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrBadRequest         = errors.New("bad request")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
