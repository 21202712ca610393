package ports

import (
	"HavirKesht_Auth/internal/model"
	"HavirKesht_Auth/internal/security"
	"context"
	"time"
)

type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
	List(ctx context.Context, params model.AccountListParams) ([]model.Account, error)
	Count(ctx context.Context, search string) (int, error)
}

type TokenRepository interface {
	Save(ctx context.Context, token *model.SessionToken) error
	FindActiveByRefresh(ctx context.Context, refreshToken string) (*model.SessionToken, error)
	FindActiveByAccess(ctx context.Context, accessToken string) (*model.SessionToken, error)
	FindActiveByAccount(ctx context.Context, accountID string) ([]model.SessionToken, error)
	Deactivate(ctx context.Context, id string) error
	DeactivateAllForAccount(ctx context.Context, accountID string) (int64, error)
	PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store набор репозиториев, привязанных к одному соединению или транзакции
type Store interface {
	Accounts() AccountRepository
	Tokens() TokenRepository
}

// TransactionManager выдает Store, привязанный к транзакции, на время fn
type TransactionManager interface {
	Store
	WithTransaction(ctx context.Context, fn func(store Store) error) error
}

type TokenIssuer interface {
	IssueAccess(subject string, username string) (string, error)
	IssueRefresh(subject string, username string) (string, error)
	Verify(token string) (*security.Claims, error)
	AccessTTL() time.Duration
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) bool
}

type LoginLimiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
	Fail(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

type Notifier interface {
	PasswordChanged(ctx context.Context, accountID string, changedAt time.Time) error
}

type AuthenticationServiceInterface interface {
	Login(ctx context.Context, identifier string, password string) (*model.TokensPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, accountID string, currentPassword string, newPassword string) error
}

type AccountServiceInterface interface {
	Create(ctx context.Context, request model.CreateAccountRequest) (*model.Account, error)
	Get(ctx context.Context, id string) (*model.Account, error)
	Update(ctx context.Context, id string, request model.UpdateAccountRequest) (*model.Account, error)
	List(ctx context.Context, params model.AccountListParams) (*model.AccountPage, error)
}
