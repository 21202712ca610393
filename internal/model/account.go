package model

import "time"

// Account учетная запись пользователя административной панели
// swagger:model
type Account struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     *string   `db:"full_name" json:"full_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateAccountRequest тело запроса на создание пользователя администратором
// swagger:model
type CreateAccountRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

// UpdateAccountRequest частичное обновление профиля, nil поля не меняются
// swagger:model
type UpdateAccountRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}

// AccountListParams параметры постраничной выборки пользователей
type AccountListParams struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder string
	Search    string
}

// AccountPage страница результатов выборки пользователей
// swagger:model
type AccountPage struct {
	Items   []Account `json:"items"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	Size    int       `json:"size"`
	Pages   int       `json:"pages"`
	HasNext bool      `json:"has_next"`
	HasPrev bool      `json:"has_prev"`
}

// AccountSortFields поля, по которым разрешена сортировка списка пользователей
var AccountSortFields = []string{"id", "username", "email", "full_name", "is_active", "created_at"}
