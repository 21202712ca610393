package repository

import (
	"HavirKesht_Auth/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const accountColumns = `id, username, email, password_hash, full_name, is_active, created_at`

var accountSortColumns = map[string]string{
	"id":         "id",
	"username":   "username",
	"email":      "email",
	"full_name":  "full_name",
	"is_active":  "is_active",
	"created_at": "created_at",
}

// AccountRepository работает с таблицей users через пул или открытую транзакцию
type AccountRepository struct {
	q sqlx.ExtContext
}

func NewAccountRepository(q sqlx.ExtContext) *AccountRepository {
	return &AccountRepository{q: q}
}

func (repository *AccountRepository) findOne(ctx context.Context, where string, args ...any) (*model.Account, error) {
	query := repository.q.Rebind(`SELECT ` + accountColumns + ` FROM users WHERE ` + where)

	var account model.Account
	if err := sqlx.GetContext(ctx, repository.q, &account, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return &account, nil
}

func (repository *AccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return repository.findOne(ctx, `id = ?`, id)
}

// FindByUsernameOrEmail ищет пользователя по логину или почте, как при входе
func (repository *AccountRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*model.Account, error) {
	return repository.findOne(ctx, `username = ? OR email = ?`, identifier, identifier)
}

func (repository *AccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return repository.findOne(ctx, `username = ?`, username)
}

func (repository *AccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return repository.findOne(ctx, `email = ?`, email)
}

func (repository *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := repository.q.Rebind(`INSERT INTO users (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := repository.q.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.FullName,
		account.IsActive,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("пользователь %q: %w", account.Username, model.ErrAlreadyExists)
		}
		return fmt.Errorf("ошибка вставки пользователя: %w", err)
	}

	return nil
}

func (repository *AccountRepository) Update(ctx context.Context, account *model.Account) error {
	query := repository.q.Rebind(`UPDATE users SET username = ?, email = ?, full_name = ?, is_active = ? WHERE id = ?`)

	result, err := repository.q.ExecContext(ctx, query,
		account.Username,
		account.Email,
		account.FullName,
		account.IsActive,
		account.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("пользователь %q: %w", account.Username, model.ErrAlreadyExists)
		}
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}

	return expectAffected(result, model.ErrAccountNotFound)
}

func (repository *AccountRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	query := repository.q.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`)

	result, err := repository.q.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления пароля: %w", err)
	}

	return expectAffected(result, model.ErrAccountNotFound)
}

// List возвращает страницу пользователей. Поле сортировки берется только из белого списка
func (repository *AccountRepository) List(ctx context.Context, params model.AccountListParams) ([]model.Account, error) {
	column, ok := accountSortColumns[params.SortBy]
	if !ok {
		return nil, fmt.Errorf("сортировка по полю %q: %w", params.SortBy, model.ErrBadRequest)
	}
	direction := "ASC"
	if strings.EqualFold(params.SortOrder, "desc") {
		direction = "DESC"
	}

	where, args := searchCondition(params.Search)

	var builder strings.Builder
	builder.WriteString(`SELECT ` + accountColumns + ` FROM users`)
	builder.WriteString(where)
	builder.WriteString(` ORDER BY ` + column + ` ` + direction)
	if column != "id" {
		builder.WriteString(`, id ASC`)
	}
	builder.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, params.Size, (params.Page-1)*params.Size)

	accounts := make([]model.Account, 0, params.Size)
	if err := sqlx.SelectContext(ctx, repository.q, &accounts, repository.q.Rebind(builder.String()), args...); err != nil {
		return nil, fmt.Errorf("ошибка выборки пользователей: %w", err)
	}

	return accounts, nil
}

func (repository *AccountRepository) Count(ctx context.Context, search string) (int, error) {
	where, args := searchCondition(search)

	var total int
	query := repository.q.Rebind(`SELECT COUNT(*) FROM users` + where)
	if err := sqlx.GetContext(ctx, repository.q, &total, query, args...); err != nil {
		return 0, fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}

	return total, nil
}

func searchCondition(search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}
	pattern := "%" + strings.ToLower(search) + "%"
	return ` WHERE LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(COALESCE(full_name, '')) LIKE ?`,
		[]any{pattern, pattern, pattern}
}

func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("не удалось проверить количество измененных строк: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
