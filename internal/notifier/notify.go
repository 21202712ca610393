package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const EventPasswordChanged = "password_changed"

// WebhookNotify тело запроса, отправляемого на webhook
type WebhookNotify struct {
	UserID    string `json:"user_id"`
	Event     string `json:"event"`
	TimeStamp string `json:"timestamp"`
}

// WebhookNotifier сообщает внешней системе о событиях безопасности.
// Ошибка отправки не отменяет операцию, вызывающий код только логирует ее
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (notifier *WebhookNotifier) PasswordChanged(ctx context.Context, userID string, changedAt time.Time) error {
	return notifier.send(ctx, &WebhookNotify{
		UserID:    userID,
		Event:     EventPasswordChanged,
		TimeStamp: changedAt.UTC().Format(time.RFC3339),
	})
}

func (notifier *WebhookNotifier) send(ctx context.Context, payload *WebhookNotify) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка преобразования в json: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, notifier.url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса webhook: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := notifier.client.Do(request)
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook ответил статусом %d", response.StatusCode)
	}

	return nil
}
