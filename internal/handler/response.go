package handler

import (
	"HavirKesht_Auth/internal/logging"
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorResponse тело ответа с ошибкой
// swagger:model
type ErrorResponse struct {
	// Описание ошибки
	// example: Invalid username or password
	Detail string `json:"detail"`
}

// MessageResponse тело ответа с сообщением о результате операции
// swagger:model
type MessageResponse struct {
	// example: Successfully logged out
	Message string `json:"message"`
}

// errorStatus сопоставляет доменную ошибку с HTTP статусом и текстом для клиента
type errorStatus struct {
	err    error
	status int
	detail string
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func writeError(writer http.ResponseWriter, status int, detail string) {
	writeJSON(writer, status, &ErrorResponse{Detail: detail})
}

// writeServiceError отвечает статусом из mapping. Неизвестные ошибки логируются
// и отдаются клиенту как 500 без подробностей
func writeServiceError(ctx context.Context, writer http.ResponseWriter, log logging.Logger, err error, mapping []errorStatus) {
	for _, m := range mapping {
		if errors.Is(err, m.err) {
			writeError(writer, m.status, m.detail)
			return
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		log.Error(ctx, "превышено время обработки запроса", "error", err)
		writeError(writer, http.StatusServiceUnavailable, "Request timed out")
		return
	}

	log.Error(ctx, "внутренняя ошибка", "error", err)
	writeError(writer, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(request.Body)
	return decoder.Decode(target)
}
