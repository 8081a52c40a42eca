package models

import "time"

// Role — именованная роль с набором строк-разрешений.
// Имена ролей фиксированы после первичного заполнения (admin, user, superadmin).
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// Plan — тарифный план подписки. Identifier — уникальный строчный
// идентификатор, на который ссылается User.Plan. Permissions ограничивают
// эффективные права пользователей на этом плане.
type Plan struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Identifier  string     `json:"identifier"`
	Prices      PlanPrices `json:"prices"`
	Features    []string   `json:"features"`
	IsPublic    bool       `json:"is_public"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PlanPrices — цены плана в двух валютах.
type PlanPrices struct {
	USD float64 `json:"usd" validate:"required"`
	INR float64 `json:"inr" validate:"required"`
}
