// Package services содержит бизнес-логику CRM-бэкофиса: аутентификацию,
// управление пользователями, ролями, планами, меню, счетами, ключами API
// и почтовыми рассылками.
package services

import "errors"

// Ошибки бизнес-уровня. Обработчики HTTP сопоставляют их с кодами ответов.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrTokenInvalid       = errors.New("token is invalid or already used")
	ErrRoleNotFound       = errors.New("role not found")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrMenuHasChildren    = errors.New("menu item has child items")
	ErrActiveKeyExists    = errors.New("active api key already exists")
	ErrKeyRevoked         = errors.New("api key is revoked or unknown")
	ErrNoRecipients       = errors.New("no recipients match the filter")
	ErrNotFound           = errors.New("not found")
)
