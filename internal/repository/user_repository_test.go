package repository

import (
	"HavirKesht_Auth/internal/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountRowColumns = []string{"id", "username", "email", "password_hash", "full_name", "is_active", "created_at"}

// 1
func TestAccountRepository_FindByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)^SELECT .* FROM users WHERE username = \$1 OR email = \$2$`).
		WithArgs("alice", "alice").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow("u1", "alice", "alice@example.com", "hash", nil, true, now))

	account, err := repo.FindByUsernameOrEmail(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", account.ID)
	assert.Nil(t, account.FullName)
	assert.True(t, account.IsActive)
}

// 2
func TestAccountRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(accountRowColumns))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}

// 3
func TestAccountRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"))

	err := repo.Create(context.Background(), &model.Account{ID: "u1", Username: "alice"})
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
}

// 4
func TestAccountRepository_UpdatePasswordHash(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	query := `^UPDATE users SET password_hash = \$1 WHERE id = \$2$`
	mock.ExpectExec(query).WithArgs("new-hash", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("new-hash", "u2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePasswordHash(context.Background(), "u1", "new-hash"))
	assert.ErrorIs(t, repo.UpdatePasswordHash(context.Background(), "u2", "new-hash"), model.ErrAccountNotFound)
}

// 5
func TestAccountRepository_List_SearchAndSort(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)FROM users WHERE LOWER\(username\) LIKE \$1 OR LOWER\(email\) LIKE \$2 OR LOWER\(COALESCE\(full_name, ''\)\) LIKE \$3 ORDER BY created_at DESC, id ASC LIMIT \$4 OFFSET \$5$`).
		WithArgs("%ali%", "%ali%", "%ali%", 10, 10).
		WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow("u1", "alice", "alice@example.com", "hash", "Alice A", true, now))

	accounts, err := repo.List(context.Background(), model.AccountListParams{
		Page: 2, Size: 10, SortBy: "created_at", SortOrder: "desc", Search: " ALI ",
	})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.NotNil(t, accounts[0].FullName)
	assert.Equal(t, "Alice A", *accounts[0].FullName)
}

// 6
func TestAccountRepository_List_RejectsUnknownSortField(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewAccountRepository(db)

	_, err := repo.List(context.Background(), model.AccountListParams{Page: 1, Size: 10, SortBy: "password_hash"})
	assert.ErrorIs(t, err, model.ErrBadRequest)
}

// 7
func TestAccountRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM users$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}
