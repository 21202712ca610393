package service

import (
	"HavirKesht_Auth/internal/logging"
	"HavirKesht_Auth/internal/model"
	"HavirKesht_Auth/internal/ports"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100

	minUsernameLength = 3
	maxUsernameLength = 50
	maxFullNameLength = 100
)

// AccountService административное управление пользователями
type AccountService struct {
	store  ports.TransactionManager
	hasher ports.PasswordHasher
	log    logging.Logger
	now    func() time.Time
}

func NewAccountService(store ports.TransactionManager, hasher ports.PasswordHasher, log logging.Logger) *AccountService {
	return &AccountService{
		store:  store,
		hasher: hasher,
		log:    log,
		now:    time.Now,
	}
}

func (service *AccountService) Create(ctx context.Context, request model.CreateAccountRequest) (*model.Account, error) {
	request.Username = strings.TrimSpace(request.Username)
	request.Email = strings.TrimSpace(request.Email)

	if err := validateUsername(request.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(request.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(request.Password); err != nil {
		return nil, err
	}
	if err := validateFullName(request.FullName); err != nil {
		return nil, err
	}

	passwordHash, err := service.hasher.Hash(request.Password)
	if err != nil {
		return nil, fmt.Errorf("не удалось захэшировать пароль: %w", err)
	}

	account := &model.Account{
		ID:           uuid.NewString(),
		Username:     request.Username,
		Email:        request.Email,
		PasswordHash: passwordHash,
		FullName:     request.FullName,
		IsActive:     true,
		CreatedAt:    service.now().UTC(),
	}

	err = service.store.WithTransaction(ctx, func(store ports.Store) error {
		if err := ensureUnique(ctx, store.Accounts(), account.Username, account.Email, ""); err != nil {
			return err
		}
		return store.Accounts().Create(ctx, account)
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пользователя: %w", err)
	}

	service.log.Info(ctx, "создан пользователь", "user_id", account.ID, "username", account.Username)
	return account, nil
}

func (service *AccountService) Get(ctx context.Context, id string) (*model.Account, error) {
	account, err := service.store.Accounts().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить пользователя: %w", err)
	}
	return account, nil
}

// Update частично обновляет профиль. Отключение пользователя гасит все его сессии
func (service *AccountService) Update(ctx context.Context, id string, request model.UpdateAccountRequest) (*model.Account, error) {
	var updated *model.Account

	err := service.store.WithTransaction(ctx, func(store ports.Store) error {
		account, err := store.Accounts().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if request.Username != nil {
			username := strings.TrimSpace(*request.Username)
			if err := validateUsername(username); err != nil {
				return err
			}
			account.Username = username
		}
		if request.Email != nil {
			email := strings.TrimSpace(*request.Email)
			if err := validateEmail(email); err != nil {
				return err
			}
			account.Email = email
		}
		if request.FullName != nil {
			if err := validateFullName(request.FullName); err != nil {
				return err
			}
			account.FullName = request.FullName
		}

		if err := ensureUnique(ctx, store.Accounts(), account.Username, account.Email, account.ID); err != nil {
			return err
		}

		deactivating := request.IsActive != nil && !*request.IsActive && account.IsActive
		if request.IsActive != nil {
			account.IsActive = *request.IsActive
		}

		if err := store.Accounts().Update(ctx, account); err != nil {
			return err
		}

		if deactivating {
			if _, err := store.Tokens().DeactivateAllForAccount(ctx, account.ID); err != nil {
				return err
			}
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось обновить пользователя: %w", err)
	}

	return updated, nil
}

// List постраничная выборка с поиском и сортировкой по белому списку полей
func (service *AccountService) List(ctx context.Context, params model.AccountListParams) (*model.AccountPage, error) {
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Size == 0 {
		params.Size = defaultPageSize
	}
	if params.SortBy == "" {
		params.SortBy = "id"
	}
	if params.SortOrder == "" {
		params.SortOrder = "asc"
	}

	if params.Page < 1 {
		return nil, fmt.Errorf("номер страницы должен быть не меньше 1: %w", model.ErrBadRequest)
	}
	if params.Size < 1 || params.Size > maxPageSize {
		return nil, fmt.Errorf("размер страницы должен быть от 1 до %d: %w", maxPageSize, model.ErrBadRequest)
	}
	if !slices.Contains(model.AccountSortFields, params.SortBy) {
		return nil, fmt.Errorf("сортировка по полю %q не поддерживается: %w", params.SortBy, model.ErrBadRequest)
	}
	params.SortOrder = strings.ToLower(params.SortOrder)
	if params.SortOrder != "asc" && params.SortOrder != "desc" {
		return nil, fmt.Errorf("порядок сортировки должен быть asc или desc: %w", model.ErrBadRequest)
	}

	accounts := service.store.Accounts()

	total, err := accounts.Count(ctx, params.Search)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список пользователей: %w", err)
	}

	items, err := accounts.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список пользователей: %w", err)
	}

	pages := (total + params.Size - 1) / params.Size

	return &model.AccountPage{
		Items:   items,
		Total:   total,
		Page:    params.Page,
		Size:    params.Size,
		Pages:   pages,
		HasNext: params.Page < pages,
		HasPrev: params.Page > 1,
	}, nil
}

// EnsureBootstrap создает первого пользователя, если таблица users пуста.
// Без него защищенные маршруты на новой БД недоступны
func (service *AccountService) EnsureBootstrap(ctx context.Context, username string, email string, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	total, err := service.store.Accounts().Count(ctx, "")
	if err != nil {
		return false, fmt.Errorf("не удалось проверить наличие пользователей: %w", err)
	}
	if total > 0 {
		return false, nil
	}

	account, err := service.Create(ctx, model.CreateAccountRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return false, err
	}

	service.log.Info(ctx, "создан начальный пользователь", "user_id", account.ID)
	return true, nil
}

func ensureUnique(ctx context.Context, accounts ports.AccountRepository, username string, email string, selfID string) error {
	existing, err := accounts.FindByUsername(ctx, username)
	if err == nil && existing.ID != selfID {
		return fmt.Errorf("имя пользователя %q уже занято: %w", username, model.ErrAlreadyExists)
	}
	if err != nil && !errors.Is(err, model.ErrAccountNotFound) {
		return err
	}

	existing, err = accounts.FindByEmail(ctx, email)
	if err == nil && existing.ID != selfID {
		return fmt.Errorf("почта %q уже используется: %w", email, model.ErrAlreadyExists)
	}
	if err != nil && !errors.Is(err, model.ErrAccountNotFound) {
		return err
	}

	return nil
}

func validateUsername(username string) error {
	length := len([]rune(username))
	if length < minUsernameLength || length > maxUsernameLength {
		return fmt.Errorf("имя пользователя должно содержать от %d до %d символов: %w", minUsernameLength, maxUsernameLength, model.ErrBadRequest)
	}
	return nil
}

func validateEmail(email string) error {
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return fmt.Errorf("некорректный адрес почты %q: %w", email, model.ErrBadRequest)
	}
	return nil
}

func validateFullName(fullName *string) error {
	if fullName != nil && len([]rune(*fullName)) > maxFullNameLength {
		return fmt.Errorf("полное имя длиннее %d символов: %w", maxFullNameLength, model.ErrBadRequest)
	}
	return nil
}
