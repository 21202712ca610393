package service

import (
	"HavirKesht_Auth/internal/logging"
	"HavirKesht_Auth/internal/model"
	"HavirKesht_Auth/internal/ports"
	"HavirKesht_Auth/internal/security"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 50

	// подставляется в bcrypt для несуществующего пользователя
	timingEqualizerPassword = "havirkesht-timing-equalizer"
)

// AuthenticationService управляет жизненным циклом сессий:
// вход, обновление токенов, выход и смена пароля
type AuthenticationService struct {
	store    ports.TransactionManager
	issuer   ports.TokenIssuer
	hasher   ports.PasswordHasher
	limiter  ports.LoginLimiter
	notifier ports.Notifier
	log      logging.Logger
	now      func() time.Time

	dummyHashOnce sync.Once
	dummyHash     string
}

type Option func(*AuthenticationService)

func WithLoginLimiter(limiter ports.LoginLimiter) Option {
	return func(service *AuthenticationService) {
		service.limiter = limiter
	}
}

func WithNotifier(notifier ports.Notifier) Option {
	return func(service *AuthenticationService) {
		service.notifier = notifier
	}
}

func WithClock(now func() time.Time) Option {
	return func(service *AuthenticationService) {
		service.now = now
	}
}

func NewAuthenticationService(
	store ports.TransactionManager,
	issuer ports.TokenIssuer,
	hasher ports.PasswordHasher,
	log logging.Logger,
	opts ...Option,
) *AuthenticationService {
	service := &AuthenticationService{
		store:  store,
		issuer: issuer,
		hasher: hasher,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Login проверяет учетные данные и открывает новую сессию.
// Все прежние активные сессии пользователя гасятся в той же транзакции
func (service *AuthenticationService) Login(ctx context.Context, identifier string, password string) (*model.TokensPair, error) {
	if service.limiter != nil {
		allowed, err := service.limiter.Allow(ctx, identifier)
		if err != nil {
			service.log.Warn(ctx, "ограничитель попыток входа недоступен", "error", err)
		} else if !allowed {
			return nil, model.ErrTooManyAttempts
		}
	}

	account, err := service.store.Accounts().FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			service.hasher.Verify(password, service.timingEqualizerHash())
			service.recordFailure(ctx, identifier)
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("не удалось найти пользователя: %w", err)
	}

	if !account.IsActive {
		return nil, model.ErrInactiveAccount
	}
	if !service.hasher.Verify(password, account.PasswordHash) {
		service.recordFailure(ctx, identifier)
		return nil, model.ErrInvalidCredentials
	}

	var tokensPair *model.TokensPair
	openSession := func(store ports.Store) error {
		if _, err := store.Tokens().DeactivateAllForAccount(ctx, account.ID); err != nil {
			return err
		}
		pair, err := service.issueSession(ctx, store, account)
		if err != nil {
			return err
		}
		tokensPair = pair
		return nil
	}

	err = service.store.WithTransaction(ctx, openSession)
	if errors.Is(err, model.ErrAlreadyExists) {
		// параллельный вход того же пользователя успел вставить свою сессию
		service.log.Info(ctx, "повтор входа после конкурентной сессии", "user_id", account.ID)
		err = service.store.WithTransaction(ctx, openSession)
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть сессию: %w", err)
	}

	if service.limiter != nil {
		if err := service.limiter.Reset(ctx, identifier); err != nil {
			service.log.Warn(ctx, "не удалось сбросить счетчик попыток входа", "error", err)
		}
	}

	service.log.Info(ctx, "пользователь вошел в систему", "user_id", account.ID)
	return tokensPair, nil
}

// Refresh обменивает refresh токен на новую пару токенов.
// Использованный токен гасится условным обновлением, повторное предъявление отклоняется
func (service *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	claims, err := service.issuer.Verify(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("не удалось провалидировать токен: %w", errors.Join(model.ErrInvalidToken, err))
	}
	if claims.Type != security.TokenKindRefresh {
		return nil, fmt.Errorf("ожидался refresh токен: %w", model.ErrInvalidToken)
	}

	var tokensPair *model.TokensPair
	err = service.store.WithTransaction(ctx, func(store ports.Store) error {
		storedToken, err := store.Tokens().FindActiveByRefresh(ctx, refreshToken)
		if err != nil {
			return err
		}

		account, err := store.Accounts().FindByID(ctx, storedToken.AccountID)
		if err != nil {
			if errors.Is(err, model.ErrAccountNotFound) {
				return model.ErrInactiveAccount
			}
			return err
		}
		if !account.IsActive {
			return model.ErrInactiveAccount
		}

		if err := store.Tokens().Deactivate(ctx, storedToken.ID); err != nil {
			return err
		}

		tokensPair, err = service.issueSession(ctx, store, account)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось обновить токены: %w", err)
	}

	return tokensPair, nil
}

// Logout гасит сессию по refresh токену. Неизвестный или уже погашенный токен не ошибка
func (service *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	err := service.store.WithTransaction(ctx, func(store ports.Store) error {
		storedToken, err := store.Tokens().FindActiveByRefresh(ctx, refreshToken)
		if err != nil {
			return err
		}
		return store.Tokens().Deactivate(ctx, storedToken.ID)
	})
	if err != nil && !errors.Is(err, model.ErrTokenNotFound) {
		return fmt.Errorf("не удалось выйти из аккаунта: %w", err)
	}

	return nil
}

// ChangePassword меняет пароль пользователя из access токена
// и гасит все его сессии
func (service *AuthenticationService) ChangePassword(ctx context.Context, accountID string, currentPassword string, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	err := service.store.WithTransaction(ctx, func(store ports.Store) error {
		account, err := store.Accounts().FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !service.hasher.Verify(currentPassword, account.PasswordHash) {
			return model.ErrInvalidCredentials
		}

		passwordHash, err := service.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		if err := store.Accounts().UpdatePasswordHash(ctx, account.ID, passwordHash); err != nil {
			return err
		}

		deactivated, err := store.Tokens().DeactivateAllForAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		service.log.Info(ctx, "пароль изменен, сессии завершены", "user_id", account.ID, "sessions", deactivated)
		return nil
	})
	if err != nil {
		return fmt.Errorf("не удалось сменить пароль: %w", err)
	}

	if service.notifier != nil {
		if err := service.notifier.PasswordChanged(ctx, accountID, service.now().UTC()); err != nil {
			service.log.Warn(ctx, "ошибка отправки webhook", "user_id", accountID, "error", err)
		}
	}

	return nil
}

// Authenticate проверяет access токен для защищенных маршрутов.
// Помимо подписи и срока действия требуется активная сессия с этим токеном
func (service *AuthenticationService) Authenticate(ctx context.Context, accessToken string) (*security.Claims, error) {
	claims, err := service.issuer.Verify(accessToken)
	if err != nil {
		return nil, errors.Join(model.ErrInvalidToken, err)
	}
	if claims.Type != security.TokenKindAccess {
		return nil, model.ErrInvalidToken
	}

	storedToken, err := service.store.Tokens().FindActiveByAccess(ctx, accessToken)
	if err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return nil, model.ErrInvalidToken
		}
		return nil, fmt.Errorf("не удалось проверить сессию: %w", err)
	}
	if storedToken.AccountID != claims.Subject {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

// PurgeInactiveTokens удаляет погашенные сессии старше olderThan
func (service *AuthenticationService) PurgeInactiveTokens(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := service.now().UTC().Add(-olderThan)

	purged, err := service.store.Tokens().PurgeInactiveBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("не удалось удалить старые сессии: %w", err)
	}

	service.log.Info(ctx, "старые сессии удалены", "count", purged, "cutoff", cutoff)
	return purged, nil
}

func (service *AuthenticationService) issueSession(ctx context.Context, store ports.Store, account *model.Account) (*model.TokensPair, error) {
	accessToken, err := service.issuer.IssueAccess(account.ID, account.Username)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}
	refreshToken, err := service.issuer.IssueRefresh(account.ID, account.Username)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	now := service.now().UTC()
	accessTTL := service.issuer.AccessTTL()

	err = store.Tokens().Save(ctx, &model.SessionToken{
		ID:           uuid.NewString(),
		AccountID:    account.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    model.TokenTypeBearer,
		IsActive:     true,
		ExpiresAt:    now.Add(accessTTL),
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    model.TokenTypeBearer,
		ExpiresIn:    int(accessTTL / time.Second),
	}, nil
}

func (service *AuthenticationService) recordFailure(ctx context.Context, identifier string) {
	if service.limiter == nil {
		return
	}
	if err := service.limiter.Fail(ctx, identifier); err != nil {
		service.log.Warn(ctx, "не удалось учесть неудачную попытку входа", "error", err)
	}
}

func (service *AuthenticationService) timingEqualizerHash() string {
	service.dummyHashOnce.Do(func() {
		hash, err := service.hasher.Hash(timingEqualizerPassword)
		if err == nil {
			service.dummyHash = hash
		}
	})
	return service.dummyHash
}

func validatePassword(password string) error {
	length := len([]rune(password))
	if length < minPasswordLength || length > maxPasswordLength {
		return fmt.Errorf("пароль должен содержать от %d до %d символов: %w", minPasswordLength, maxPasswordLength, model.ErrBadRequest)
	}
	return nil
}
