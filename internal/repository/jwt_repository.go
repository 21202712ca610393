package repository

import (
	"HavirKesht_Auth/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const tokenColumns = `id, user_id, access_token, refresh_token, token_type, is_active, expires_at, created_at`

// TokenRepository хранит выданные пары токенов в таблице auth_tokens.
// Записи не удаляются при выходе, только деактивируются
type TokenRepository struct {
	q sqlx.ExtContext
}

func NewTokenRepository(q sqlx.ExtContext) *TokenRepository {
	return &TokenRepository{q: q}
}

func (repository *TokenRepository) Save(ctx context.Context, token *model.SessionToken) error {
	query := repository.q.Rebind(`INSERT INTO auth_tokens (` + tokenColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := repository.q.ExecContext(ctx, query,
		token.ID,
		token.AccountID,
		token.AccessToken,
		token.RefreshToken,
		token.TokenType,
		token.IsActive,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("активная сессия пользователя %s: %w", token.AccountID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("ошибка вставки данных в БД: %w", err)
	}

	return nil
}

func (repository *TokenRepository) findActive(ctx context.Context, column string, value string) (*model.SessionToken, error) {
	query := repository.q.Rebind(`SELECT ` + tokenColumns + ` FROM auth_tokens WHERE ` + column + ` = ? AND is_active = TRUE`)

	var token model.SessionToken
	if err := sqlx.GetContext(ctx, repository.q, &token, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTokenNotFound
		}
		return nil, fmt.Errorf("ошибка поиска токена: %w", err)
	}

	return &token, nil
}

func (repository *TokenRepository) FindActiveByRefresh(ctx context.Context, refreshToken string) (*model.SessionToken, error) {
	return repository.findActive(ctx, "refresh_token", refreshToken)
}

func (repository *TokenRepository) FindActiveByAccess(ctx context.Context, accessToken string) (*model.SessionToken, error) {
	return repository.findActive(ctx, "access_token", accessToken)
}

func (repository *TokenRepository) FindActiveByAccount(ctx context.Context, accountID string) ([]model.SessionToken, error) {
	query := repository.q.Rebind(`SELECT ` + tokenColumns + ` FROM auth_tokens WHERE user_id = ? AND is_active = TRUE ORDER BY created_at`)

	tokens := make([]model.SessionToken, 0)
	if err := sqlx.SelectContext(ctx, repository.q, &tokens, query, accountID); err != nil {
		return nil, fmt.Errorf("ошибка выборки токенов пользователя: %w", err)
	}

	return tokens, nil
}

// Deactivate гасит запись только если она еще активна. Если запись уже
// погашена конкурентным запросом, возвращается model.ErrTokenNotFound
func (repository *TokenRepository) Deactivate(ctx context.Context, id string) error {
	query := repository.q.Rebind(`UPDATE auth_tokens SET is_active = FALSE WHERE id = ? AND is_active = TRUE`)

	result, err := repository.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("не удалось деактивировать токен: %w", err)
	}

	return expectAffected(result, model.ErrTokenNotFound)
}

func (repository *TokenRepository) DeactivateAllForAccount(ctx context.Context, accountID string) (int64, error) {
	query := repository.q.Rebind(`UPDATE auth_tokens SET is_active = FALSE WHERE user_id = ? AND is_active = TRUE`)

	result, err := repository.q.ExecContext(ctx, query, accountID)
	if err != nil {
		return 0, fmt.Errorf("не удалось деактивировать токены пользователя: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("не удалось проверить количество измененных строк: %w", err)
	}

	return rowsAffected, nil
}

// PurgeInactiveBefore удаляет неактивные записи, созданные раньше cutoff
func (repository *TokenRepository) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := repository.q.Rebind(`DELETE FROM auth_tokens WHERE is_active = FALSE AND created_at < ?`)

	result, err := repository.q.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("не удалось удалить старые токены: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("не удалось проверить количество удаленных строк: %w", err)
	}

	return rowsAffected, nil
}
