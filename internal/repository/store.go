package repository

import (
	"HavirKesht_Auth/internal"
	"HavirKesht_Auth/internal/ports"
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLStore выдает репозитории, привязанные к пулу соединений,
// и открывает транзакции, внутри которых репозитории привязаны к *sqlx.Tx
type SQLStore struct {
	database *internal.Database
}

func NewSQLStore(database *internal.Database) *SQLStore {
	return &SQLStore{database: database}
}

func (store *SQLStore) Accounts() ports.AccountRepository {
	return NewAccountRepository(store.database.DB)
}

func (store *SQLStore) Tokens() ports.TokenRepository {
	return NewTokenRepository(store.database.DB)
}

func (store *SQLStore) WithTransaction(ctx context.Context, fn func(store ports.Store) error) error {
	return store.database.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return fn(txStore{tx: tx})
	})
}

type txStore struct {
	tx *sqlx.Tx
}

func (store txStore) Accounts() ports.AccountRepository {
	return NewAccountRepository(store.tx)
}

func (store txStore) Tokens() ports.TokenRepository {
	return NewTokenRepository(store.tx)
}
