package models

import "time"

// Статусы API-ключа. Ключ никогда не удаляется физически — только отзывается.
const (
	APIKeyStatusActive  = "active"
	APIKeyStatusRevoked = "revoked"
)

// Флаги возможностей API-ключа.
const (
	APIKeyPermissionRead   = "read"
	APIKeyPermissionWrite  = "write"
	APIKeyPermissionDelete = "delete"
)

// APIKey — статический ключ для публичного API. Секрет генерируется на
// сервере и возвращается ровно один раз при создании; далее доступна
// только маскированная форма.
type APIKey struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Key         string     `json:"-"`
	Permissions []string   `json:"permissions"` // read, write, delete
	Status      string     `json:"status"`      // active или revoked
	LastUsed    *time.Time `json:"last_used"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HasPermission проверяет, несет ли ключ указанный флаг возможности.
func (k *APIKey) HasPermission(permission string) bool {
	for _, p := range k.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// APIKeyOverview — строка списка ключей для суперадмина с маскированным
// секретом и данными владельца.
type APIKeyOverview struct {
	ID          int64      `json:"id"`
	MaskedKey   string     `json:"masked_key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Permissions []string   `json:"permissions"`
	Status      string     `json:"status"`
	LastUsed    *time.Time `json:"last_used"`
	CreatedAt   time.Time  `json:"created_at"`
	Owner       OwnerInfo  `json:"owner"`
}

// OwnerInfo — краткие сведения о владельце ключа или вебхука.
type OwnerInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
}
