// Package limiter ограничивает число неудачных попыток входа, счетчики хранятся в redis
package limiter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "login_failures:"

type LoginLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		redis:       client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (l *LoginLimiter) key(identifier string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(identifier))
}

// Allow возвращает false, когда число неудач в текущем окне достигло предела
func (l *LoginLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	count, err := l.redis.Get(ctx, l.key(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return true, fmt.Errorf("ошибка чтения счетчика попыток: %w", err)
	}
	return count < l.maxAttempts, nil
}

// Fail учитывает неудачную попытку. Окно отсчитывается от первой неудачи
func (l *LoginLimiter) Fail(ctx context.Context, identifier string) error {
	key := l.key(identifier)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("ошибка увеличения счетчика попыток: %w", err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("ошибка установки времени жизни счетчика: %w", err)
		}
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, l.key(identifier)).Err(); err != nil {
		return fmt.Errorf("ошибка сброса счетчика попыток: %w", err)
	}
	return nil
}
