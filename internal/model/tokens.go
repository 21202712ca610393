package model

import "time"

// TokenTypeBearer единственный тип токена, который выдает сервис
const TokenTypeBearer = "bearer"

// SessionToken одна выданная пара access/refresh токенов.
// Записи не удаляются при выходе, а только деактивируются
type SessionToken struct {
	ID           string    `db:"id"`
	AccountID    string    `db:"user_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	TokenType    string    `db:"token_type"`
	IsActive     bool      `db:"is_active"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// Refresh токен (для получения нового access токена)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`

	// Тип токена, всегда "bearer"
	TokenType string `json:"token_type"`

	// Время жизни access токена в секундах
	// example: 1800
	ExpiresIn int `json:"expires_in"`
}
