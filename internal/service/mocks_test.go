package service

import (
	"HavirKesht_Auth/internal/model"
	"HavirKesht_Auth/internal/ports"
	"HavirKesht_Auth/internal/security"
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) account(args mock.Arguments) (*model.Account, error) {
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return m.account(m.Called(ctx, id))
}

func (m *MockAccountRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*model.Account, error) {
	return m.account(m.Called(ctx, identifier))
}

func (m *MockAccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return m.account(m.Called(ctx, username))
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return m.account(m.Called(ctx, email))
}

func (m *MockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockAccountRepository) List(ctx context.Context, params model.AccountListParams) ([]model.Account, error) {
	args := m.Called(ctx, params)
	accounts, _ := args.Get(0).([]model.Account)
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) Count(ctx context.Context, search string) (int, error) {
	args := m.Called(ctx, search)
	return args.Int(0), args.Error(1)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) token(args mock.Arguments) (*model.SessionToken, error) {
	token, _ := args.Get(0).(*model.SessionToken)
	return token, args.Error(1)
}

func (m *MockTokenRepository) Save(ctx context.Context, token *model.SessionToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockTokenRepository) FindActiveByRefresh(ctx context.Context, refreshToken string) (*model.SessionToken, error) {
	return m.token(m.Called(ctx, refreshToken))
}

func (m *MockTokenRepository) FindActiveByAccess(ctx context.Context, accessToken string) (*model.SessionToken, error) {
	return m.token(m.Called(ctx, accessToken))
}

func (m *MockTokenRepository) FindActiveByAccount(ctx context.Context, accountID string) ([]model.SessionToken, error) {
	args := m.Called(ctx, accountID)
	tokens, _ := args.Get(0).([]model.SessionToken)
	return tokens, args.Error(1)
}

func (m *MockTokenRepository) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTokenRepository) DeactivateAllForAccount(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenRepository) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockStore выполняет транзакцию сразу, без БД
type MockStore struct {
	accounts *MockAccountRepository
	tokens   *MockTokenRepository

	transactions int
}

func newMockStore() *MockStore {
	return &MockStore{
		accounts: new(MockAccountRepository),
		tokens:   new(MockTokenRepository),
	}
}

func (m *MockStore) Accounts() ports.AccountRepository {
	return m.accounts
}

func (m *MockStore) Tokens() ports.TokenRepository {
	return m.tokens
}

func (m *MockStore) WithTransaction(ctx context.Context, fn func(store ports.Store) error) error {
	m.transactions++
	return fn(m)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueAccess(subject string, username string) (string, error) {
	args := m.Called(subject, username)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) IssueRefresh(subject string, username string) (string, error) {
	args := m.Called(subject, username)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) Verify(token string) (*security.Claims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*security.Claims)
	return claims, args.Error(1)
}

func (m *MockTokenIssuer) AccessTTL() time.Duration {
	return 30 * time.Minute
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password string, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

type MockLoginLimiter struct {
	mock.Mock
}

func (m *MockLoginLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	args := m.Called(ctx, identifier)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginLimiter) Fail(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

func (m *MockLoginLimiter) Reset(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PasswordChanged(ctx context.Context, accountID string, changedAt time.Time) error {
	return m.Called(ctx, accountID, changedAt).Error(0)
}
