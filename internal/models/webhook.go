package models

import "time"

// Статусы вебхука.
const (
	WebhookStatusActive   = "active"
	WebhookStatusInactive = "inactive"
)

// Webhook — подписка внешнего потребителя на события системы.
// Секрет генерируется на сервере при создании.
type Webhook struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Secret    string    `json:"secret"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// WebhookOverview — строка списка вебхуков с данными владельца.
type WebhookOverview struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Owner     OwnerInfo `json:"owner"`
}
