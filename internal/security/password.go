package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher хэширует пароли bcrypt, соль генерируется на каждый вызов
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (hasher *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("ошибка хэширования: %w", err)
	}
	return string(hashed), nil
}

// Verify возвращает false при несовпадении и при поврежденном хэше
func (hasher *PasswordHasher) Verify(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
