package handler

import (
	"HavirKesht_Auth/internal/logging"
	"HavirKesht_Auth/internal/model"
	"HavirKesht_Auth/internal/ports"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type AccountHandler struct {
	service ports.AccountServiceInterface
	log     logging.Logger
	timeout time.Duration
}

var accountErrors = []errorStatus{
	{model.ErrAccountNotFound, http.StatusNotFound, "User not found"},
	{model.ErrAlreadyExists, http.StatusBadRequest, "Username or email already registered"},
	{model.ErrBadRequest, http.StatusBadRequest, "Invalid request parameters"},
}

func NewAccountHandler(service ports.AccountServiceInterface, log logging.Logger, timeout time.Duration) *AccountHandler {
	return &AccountHandler{
		service: service,
		log:     log,
		timeout: timeout,
	}
}

// Create создает пользователя
// @Summary Создание пользователя администратором
// @Tags Users
// @Accept json
// @Produce json
// @Param request body model.CreateAccountRequest true "Данные пользователя"
// @Success 200 {object} model.Account
// @Failure 400 {object} ErrorResponse "ошибка валидации или пользователь уже существует"
// @Security ApiKeyAuth
// @Router /users/admin [post]
func (handler *AccountHandler) Create(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	var createRequest model.CreateAccountRequest
	if err := decodeJSON(request, &createRequest); err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := handler.service.Create(ctx, createRequest)
	if err != nil {
		writeServiceError(ctx, writer, handler.log, err, accountErrors)
		return
	}

	writeJSON(writer, http.StatusOK, account)
}

// Get возвращает пользователя по id
// @Summary Получение пользователя
// @Tags Users
// @Produce json
// @Param id path string true "ID пользователя"
// @Success 200 {object} model.Account
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (handler *AccountHandler) Get(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	account, err := handler.service.Get(ctx, chi.URLParam(request, "id"))
	if err != nil {
		writeServiceError(ctx, writer, handler.log, err, accountErrors)
		return
	}

	writeJSON(writer, http.StatusOK, account)
}

// Update частично обновляет пользователя
// @Summary Обновление пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "ID пользователя"
// @Param request body model.UpdateAccountRequest true "Изменяемые поля"
// @Success 200 {object} model.Account
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{id} [put]
func (handler *AccountHandler) Update(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	var updateRequest model.UpdateAccountRequest
	if err := decodeJSON(request, &updateRequest); err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := handler.service.Update(ctx, chi.URLParam(request, "id"), updateRequest)
	if err != nil {
		writeServiceError(ctx, writer, handler.log, err, accountErrors)
		return
	}

	writeJSON(writer, http.StatusOK, account)
}

// List постраничный список пользователей
// @Summary Список пользователей
// @Tags Users
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Param size query int false "Размер страницы" default(50)
// @Param sort_by query string false "id, username, email, full_name, is_active, created_at" default(id)
// @Param sort_order query string false "asc или desc" default(asc)
// @Param search query string false "Поиск по имени, почте и полному имени"
// @Success 200 {object} model.AccountPage
// @Failure 400 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /users [get]
func (handler *AccountHandler) List(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
	defer cancel()

	query := request.URL.Query()

	page, err := queryInt(query.Get("page"))
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid page")
		return
	}
	size, err := queryInt(query.Get("size"))
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid size")
		return
	}

	result, err := handler.service.List(ctx, model.AccountListParams{
		Page:      page,
		Size:      size,
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
		Search:    query.Get("search"),
	})
	if err != nil {
		writeServiceError(ctx, writer, handler.log, err, accountErrors)
		return
	}

	writeJSON(writer, http.StatusOK, result)
}

// пустой параметр означает значение по умолчанию
func queryInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
