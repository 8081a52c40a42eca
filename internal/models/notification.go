package models

import "time"

// Notification — внутрисистемное уведомление для конкретного получателя.
type Notification struct {
	ID        int64     `json:"id"`
	Recipient int64     `json:"recipient"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailTemplate — именованный шаблон письма. В теле допускается
// подстановка {{name}} — имя получателя.
type EmailTemplate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// RecipientFilter — фильтр выборки получателей для рассылок:
// all — все пользователи, plan — по идентификатору плана, role — по роли.
type RecipientFilter struct {
	Type  string `json:"type" validate:"required,oneof=all plan role"`
	Value string `json:"value"`
}

// EmailJob — задание на отправку одного письма, публикуемое в очередь.
type EmailJob struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
