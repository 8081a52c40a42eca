// Package models содержит доменные структуры CRM-бэкофиса: учетные записи,
// роли, тарифные планы, пункты меню, API-ключи и сопутствующие сущности.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет учетную запись компании-клиента в системе.
type User struct {
	ID            int64      // Уникальный идентификатор
	Name          string     // Имя контактного лица
	Email         string     // Электронная почта (уникальная)
	Phone         string     // Телефон
	Address       string     // Адрес компании
	CompanyName   string     // Название компании
	CompanySize   string     // Размер компании
	IndustryType  string     // Отрасль
	PasswordHash  string     // Хэш пароля
	Plan          string     // Идентификатор тарифного плана
	Role          string     // Роль: user, admin или superadmin
	CreatedBy     *int64     // Админ, создавший эту запись (опционально)
	SupportTicket string     // Номер тикета поддержки, выдается при регистрации
	IsVerified    bool       // Подтвержден ли email
	CreatedAt     time.Time  // Дата создания

	VerificationToken    *string    // Одноразовый токен подтверждения email
	PasswordResetToken   *string    // SHA-256 хэш токена сброса пароля
	PasswordResetExpires *time.Time // Срок действия токена сброса
}

// UserOverview — строка списка пользователей для суперадмина:
// содержит производный статус и количество созданных этим админом записей.
type UserOverview struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	CompanyName       string    `json:"company_name"`
	Role              string    `json:"role"`
	Plan              string    `json:"plan"`
	IsVerified        bool      `json:"is_verified"`
	Status            string    `json:"status"` // active, если email подтвержден, иначе pending
	CreatedUsersCount int       `json:"created_users_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// AdminSummary — краткая карточка админа для страницы подписок клиентов.
type AdminSummary struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name"`
	Plan        string    `json:"plan"`
	CreatedAt   time.Time `json:"created_at"`
}

// Contact — урезанное представление пользователя для публичного API.
type Contact struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

// Profile — карточка текущего пользователя без служебных полей.
type Profile struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	CompanyName   string    `json:"company_name"`
	CompanySize   string    `json:"company_size"`
	IndustryType  string    `json:"industry_type"`
	Plan          string    `json:"plan"`
	Role          string    `json:"role"`
	SupportTicket string    `json:"support_ticket"`
	IsVerified    bool      `json:"is_verified"`
	CreatedAt     time.Time `json:"created_at"`
}
